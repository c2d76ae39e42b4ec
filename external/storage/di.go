package storage

import (
	"github.com/mindhaven/sessioncore/internal/config"
	storagepkg "github.com/mindhaven/sessioncore/internal/storage"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (storagepkg.ObjectStore, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPStore(c.StorageBaseURL), nil
	})
}
