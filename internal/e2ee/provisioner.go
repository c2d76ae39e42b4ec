package e2ee

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mindhaven/sessioncore/internal/media"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Derivation parameters are fixed for the life of the key scheme: every
	// participant must derive byte-identical key material from the same
	// passphrase, on any device.
	keyIterations = 210_000
	keySalt       = "mindhaven-media-key-v1"

	passphraseEntropyBytes = 16
)

var ErrEmptyPassphrase = errors.New("encryption passphrase must not be empty")

// DeriveKey turns a shared passphrase into the symmetric media key.
// Deterministic: the same passphrase always yields the same key.
func DeriveKey(passphrase string) [media.KeySize]byte {
	var key [media.KeySize]byte
	derived := pbkdf2.Key([]byte(passphrase), []byte(keySalt), keyIterations, media.KeySize, sha256.New)
	copy(key[:], derived)
	return key
}

// GeneratePassphrase returns a random secret safe to embed in a URL fragment.
func GeneratePassphrase() (string, error) {
	buf := make([]byte, passphraseEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate passphrase: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type deriveRequest struct {
	passphrase string
	reply      chan [media.KeySize]byte
}

// Provisioner derives media keys on a dedicated worker goroutine so the
// derivation cost never blocks callers' event loops. Callers communicate
// with the worker only through channels; the passphrase is never stored on
// the Provisioner.
type Provisioner struct {
	requests chan deriveRequest
	quit     chan struct{}
}

func NewProvisioner() *Provisioner {
	p := &Provisioner{
		requests: make(chan deriveRequest),
		quit:     make(chan struct{}),
	}
	go p.worker()
	return p
}

func (p *Provisioner) worker() {
	for {
		select {
		case req := <-p.requests:
			req.reply <- DeriveKey(req.passphrase)
		case <-p.quit:
			return
		}
	}
}

// Derive runs key derivation on the worker. Validation failures are local
// and never reach the worker.
func (p *Provisioner) Derive(ctx context.Context, passphrase string) ([media.KeySize]byte, error) {
	var zero [media.KeySize]byte
	if strings.TrimSpace(passphrase) == "" {
		return zero, ErrEmptyPassphrase
	}
	req := deriveRequest{passphrase: passphrase, reply: make(chan [media.KeySize]byte, 1)}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-p.quit:
		return zero, errors.New("key provisioner is closed")
	}
	select {
	case key := <-req.reply:
		return key, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (p *Provisioner) Close() {
	close(p.quit)
}
