package summarizer

import (
	"github.com/mindhaven/sessioncore/internal/config"
	summarizerpkg "github.com/mindhaven/sessioncore/internal/summarizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (summarizerpkg.Summarizer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewChatClient(ChatConfig{
			URL:    c.SummarizerURL,
			APIKey: c.SummarizerAPIKey,
			Model:  c.SummarizerModel,
		}), nil
	})
}
