package httpapi

import (
	"github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/insights"
	"github.com/mindhaven/sessioncore/internal/pipeline"
	"github.com/mindhaven/sessioncore/internal/session"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		return NewHandler(
			do.MustInvoke[*session.Manager](i),
			do.MustInvoke[insights.Store](i),
			do.MustInvoke[*pipeline.Runner](i),
			do.MustInvoke[connect.DetailsClient](i),
		), nil
	})
}
