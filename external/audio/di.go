package audio

import (
	audiopkg "github.com/mindhaven/sessioncore/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audiopkg.Decoder, error) {
		return NewOggOpusDecoder(), nil
	})
}
