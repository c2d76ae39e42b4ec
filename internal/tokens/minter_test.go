package tokens

import (
	"errors"
	"testing"
	"time"
)

func TestMint_RoundTrip(t *testing.T) {
	m := NewMinter("secret", 15*time.Minute)
	token, err := m.Mint("room-42", "alex")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	identity, err := m.Verify(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if identity != "alex" {
		t.Fatalf("expected identity alex, got %q", identity)
	}
}

func TestMint_Validation(t *testing.T) {
	m := NewMinter("secret", 15*time.Minute)
	cases := []struct {
		name     string
		room     string
		identity string
		want     error
	}{
		{name: "empty room", room: "  ", identity: "alex", want: ErrEmptyRoom},
		{name: "empty identity", room: "room-42", identity: "", want: ErrEmptyIdentity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Mint(tc.room, tc.identity)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := NewMinter("secret-a", time.Minute).Mint("room-42", "alex")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := NewMinter("secret-b", time.Minute).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	m := NewMinter("secret", -time.Minute)
	token, err := m.Mint("room-42", "alex")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}
