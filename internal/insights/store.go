package insights

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no insights document exists for a room.
var ErrNotFound = errors.New("session insights not found")

// Result carries the summarization output applied as one partial update.
type Result struct {
	Summary  string
	Insights []string
	Mood     string
	Goals    []string
	Warnings []string
}

// Store is the insights document boundary. All mutations are partial field
// updates; TransitionStatus is the conditional write that serializes
// concurrent pipeline runs for the same room.
type Store interface {
	// CreatePending upserts a fresh pending document for the room,
	// clearing any previous run's fields.
	CreatePending(ctx context.Context, roomID string) error

	// TransitionStatus moves status from 'from' to 'to' and returns false,
	// without error, when the stored status does not match 'from'.
	TransitionStatus(ctx context.Context, roomID string, from, to Status) (bool, error)

	SetTranscript(ctx context.Context, roomID, transcript string) error
	SetResult(ctx context.Context, roomID string, result Result) error

	// MarkFailed records the terminal failure reason from any status.
	MarkFailed(ctx context.Context, roomID, reason string) error

	Get(ctx context.Context, roomID string) (*SessionInsights, error)
}
