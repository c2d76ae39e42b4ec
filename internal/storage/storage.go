package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned while the recording service has not yet
// finalized the artifact; callers retry within their own bound.
var ErrObjectNotFound = errors.New("object not found")

type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// RecordingKey derives the storage key of a room's recording artifact.
func RecordingKey(roomID string) string {
	return fmt.Sprintf("recordings/%s.ogg", roomID)
}
