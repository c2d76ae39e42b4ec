package session

import (
	"context"
	"log/slog"

	"github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/e2ee"
	"github.com/mindhaven/sessioncore/internal/media"
	"github.com/mindhaven/sessioncore/internal/pipeline"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		details := do.MustInvoke[connect.DetailsClient](i)
		transport := do.MustInvoke[media.Transport](i)
		deriver := do.MustInvoke[*e2ee.Provisioner](i)
		runner := do.MustInvoke[*pipeline.Runner](i)
		handoff := func(roomID string) {
			if err := runner.Run(context.Background(), roomID); err != nil {
				slog.Error("post-session processing failed", "room", roomID, "error", err)
			}
		}
		return NewManager(details, transport, deriver, handoff), nil
	})
}
