package pipeline

import (
	"time"

	"github.com/mindhaven/sessioncore/internal/audio"
	"github.com/mindhaven/sessioncore/internal/config"
	"github.com/mindhaven/sessioncore/internal/insights"
	"github.com/mindhaven/sessioncore/internal/storage"
	"github.com/mindhaven/sessioncore/internal/summarizer"
	"github.com/mindhaven/sessioncore/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Runner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[insights.Store](i)
		objects := do.MustInvoke[storage.ObjectStore](i)
		decoder := do.MustInvoke[audio.Decoder](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		llm := do.MustInvoke[summarizer.Summarizer](i)
		return NewRunner(store, objects, decoder, stt, llm, Config{
			RecordingWaitMax: time.Duration(cfg.RecordingWaitMaxSec) * time.Second,
			ServiceMaxTries:  uint(cfg.ServiceRetryMaxTries),
			CallTimeout:      time.Duration(cfg.ServiceCallTimeoutSec) * time.Second,
		}), nil
	})
}
