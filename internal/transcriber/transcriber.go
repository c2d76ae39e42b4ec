package transcriber

import "context"

// Transcriber converts a recording's PCM audio into transcript text.
// Retryable failures are marked with the transient package.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}
