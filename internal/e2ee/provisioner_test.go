package e2ee

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mindhaven/sessioncore/internal/media"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	first := DeriveKey("correct-horse")
	second := DeriveKey("correct-horse")
	if !bytes.Equal(first[:], second[:]) {
		t.Fatal("expected identical key material for the same passphrase")
	}
	other := DeriveKey("wrong-horse")
	if bytes.Equal(first[:], other[:]) {
		t.Fatal("expected different passphrases to yield different keys")
	}
}

func TestDeriveKey_NotDegenerate(t *testing.T) {
	key := DeriveKey("correct-horse")
	var zero [media.KeySize]byte
	if bytes.Equal(key[:], zero[:]) {
		t.Fatal("derived key must not be all zeros")
	}
}

func TestDerive_WorkerMatchesDirectDerivation(t *testing.T) {
	p := NewProvisioner()
	defer p.Close()

	key, err := p.Derive(context.Background(), "correct-horse")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := DeriveKey("correct-horse")
	if !bytes.Equal(key[:], want[:]) {
		t.Fatal("worker derivation must match direct derivation")
	}
}

func TestDerive_EmptyPassphrase(t *testing.T) {
	p := NewProvisioner()
	defer p.Close()

	_, err := p.Derive(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestDerive_ClosedProvisioner(t *testing.T) {
	p := NewProvisioner()
	p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Derive(ctx, "correct-horse"); err == nil {
		t.Fatal("expected error when provisioner is closed")
	}
}

func TestGeneratePassphrase_NonEmptyAndUnique(t *testing.T) {
	a, err := GeneratePassphrase()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := GeneratePassphrase()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a == "" || a == b {
		t.Fatalf("expected unique non-empty passphrases, got %q and %q", a, b)
	}
}
