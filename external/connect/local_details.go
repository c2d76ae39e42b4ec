package connect

import (
	"context"

	connectpkg "github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/tokens"
)

// LocalDetailsClient serves connection details without an external service:
// it points participants at the configured media server and mints the token
// itself. Used when CONNECTION_DETAILS_URL is unset.
type LocalDetailsClient struct {
	serverURL string
	minter    *tokens.Minter
}

func NewLocalDetailsClient(serverURL string, minter *tokens.Minter) connectpkg.DetailsClient {
	return &LocalDetailsClient{serverURL: serverURL, minter: minter}
}

func (c *LocalDetailsClient) Fetch(_ context.Context, room, participant, _ string) (connectpkg.Details, error) {
	token, err := c.minter.Mint(room, participant)
	if err != nil {
		return connectpkg.Details{}, err
	}
	return connectpkg.Details{
		ServerURL:        c.serverURL,
		RoomName:         room,
		ParticipantName:  participant,
		ParticipantToken: token,
	}, nil
}
