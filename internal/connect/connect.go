package connect

import "context"

// Details is the short-lived join material handed back by the
// connection-details service.
type Details struct {
	ServerURL        string `json:"serverUrl"`
	RoomName         string `json:"roomName"`
	ParticipantName  string `json:"participantName"`
	ParticipantToken string `json:"participantToken"`
}

type DetailsClient interface {
	Fetch(ctx context.Context, room, participant, region string) (Details, error)
}
