package media

import (
	"context"
	"errors"
	"time"
)

// KeySize is the length of the symmetric media-encryption key in bytes.
const KeySize = 32

// ErrEncryptionUnsupported is reported when the transport cannot run the
// media-encryption worker in the current environment.
var ErrEncryptionUnsupported = errors.New("media encryption is not supported in this environment")

type ConnectOptions struct {
	Codec       string
	HighQuality bool
}

// Fragment is one unit of streamed speech-to-text output delivered over the
// transport's signaling channel. Fragments sharing an ID are revisions of the
// same utterance.
type Fragment struct {
	ID            string
	Text          string
	Final         bool
	FirstReceived time.Time
	LastReceived  time.Time
	Participant   string
}

type Transport interface {
	Connect(ctx context.Context, serverURL, token string, opts ConnectOptions) (Room, error)
}

type Room interface {
	// EnableEncryption installs the symmetric media key. It must be called
	// before media starts flowing; calling it on a joined room fails.
	EnableEncryption(key [KeySize]byte) error
	Join(ctx context.Context) error
	RegisterTranscriptionHandler(handler func(fragments []Fragment))
	RegisterDisconnectHandler(handler func(reason string))
	Disconnect() error
}
