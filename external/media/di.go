package media

import (
	mediapkg "github.com/mindhaven/sessioncore/internal/media"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (mediapkg.Transport, error) {
		return NewTransport(), nil
	})
}
