package e2ee

import "github.com/samber/do/v2"

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Provisioner, error) {
		return NewProvisioner(), nil
	})
}
