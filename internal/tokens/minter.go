package tokens

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmptyRoom     = errors.New("room name is required")
	ErrEmptyIdentity = errors.New("participant identity is required")
)

// Minter issues short-lived participant access tokens for the media server.
// The token carries a video grant scoped to a single room; it never carries
// encryption material.
type Minter struct {
	secret []byte
	ttl    time.Duration
}

func NewMinter(secret string, ttl time.Duration) *Minter {
	return &Minter{secret: []byte(secret), ttl: ttl}
}

type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

func (m *Minter) Mint(room, identity string) (string, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return "", ErrEmptyRoom
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": identity,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
		"video": videoGrant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a minted token and returns the participant identity. Used by
// tests and by deployments that terminate signaling locally.
func (m *Minter) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no participant identity")
	}
	return sub, nil
}
