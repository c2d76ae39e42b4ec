package connect

import (
	"time"

	"github.com/mindhaven/sessioncore/internal/config"
	connectpkg "github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/tokens"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*tokens.Minter, error) {
		c := do.MustInvoke[*config.Config](i)
		return tokens.NewMinter(c.TokenSigningSecret, time.Duration(c.TokenTTLMin)*time.Minute), nil
	})
	do.Provide(injector, func(i do.Injector) (connectpkg.DetailsClient, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.ConnectionDetailsURL != "" {
			return NewHTTPDetailsClient(c.ConnectionDetailsURL, time.Duration(c.ServiceCallTimeoutSec)*time.Second), nil
		}
		minter := do.MustInvoke[*tokens.Minter](i)
		return NewLocalDetailsClient(c.MediaServerURL, minter), nil
	})
}
