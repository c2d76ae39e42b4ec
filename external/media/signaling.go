package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	mediapkg "github.com/mindhaven/sessioncore/internal/media"
)

const (
	writeTimeout      = 10 * time.Second
	pingInterval      = 20 * time.Second
	readTimeout       = 60 * time.Second
	protocolVersion   = 1
	closeGraceTimeout = 5 * time.Second
)

// envelope is the signaling message frame exchanged with the media server.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// joinPayload carries no key material, not even a digest of it: the key is
// derived from a human-shareable passphrase, so any key-derived value would
// give the server an offline guessing oracle. The server only learns that
// media will be encrypted.
type joinPayload struct {
	Version     int    `json:"version"`
	Codec       string `json:"codec,omitempty"`
	HighQuality bool   `json:"highQuality"`
	Encrypted   bool   `json:"encrypted"`
}

type transcriptionPayload struct {
	Segments []transcriptionSegment `json:"segments"`
}

type transcriptionSegment struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Final       bool   `json:"final"`
	Participant string `json:"participant"`
}

type byePayload struct {
	Reason string `json:"reason"`
}

type Transport struct {
	dialer *websocket.Dialer
}

func NewTransport() mediapkg.Transport {
	return &Transport{dialer: websocket.DefaultDialer}
}

func (t *Transport) Connect(ctx context.Context, serverURL, token string, opts mediapkg.ConnectOptions) (mediapkg.Room, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := t.dialer.DialContext(ctx, serverURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("signaling dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("signaling dial failed: %w", err)
	}
	return &room{conn: conn, opts: opts}, nil
}

type room struct {
	conn *websocket.Conn
	opts mediapkg.ConnectOptions

	mu              sync.Mutex
	joined          bool
	closed          bool
	keyInstalled    bool
	onTranscription func([]mediapkg.Fragment)
	onDisconnect    func(reason string)
}

func (r *room) EnableEncryption(_ [mediapkg.KeySize]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joined {
		return fmt.Errorf("encryption key must be installed before joining the room")
	}
	r.keyInstalled = true
	return nil
}

func (r *room) Join(ctx context.Context) error {
	r.mu.Lock()
	if r.joined {
		r.mu.Unlock()
		return fmt.Errorf("room already joined")
	}
	payload, err := json.Marshal(joinPayload{
		Version:     protocolVersion,
		Codec:       r.opts.Codec,
		HighQuality: r.opts.HighQuality,
		Encrypted:   r.keyInstalled,
	})
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.writeLocked(envelope{Type: "join", Payload: payload}); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("send join: %w", err)
	}
	r.mu.Unlock()

	if err := r.awaitJoined(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	r.joined = true
	r.mu.Unlock()

	go r.readLoop()
	go r.pingLoop()
	return nil
}

func (r *room) awaitJoined(ctx context.Context) error {
	deadline := time.Now().Add(readTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = r.conn.SetReadDeadline(deadline)
	var env envelope
	if err := r.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("await join confirmation: %w", err)
	}
	switch env.Type {
	case "joined":
		return nil
	case "bye":
		var bye byePayload
		_ = json.Unmarshal(env.Payload, &bye)
		return fmt.Errorf("server refused join: %s", bye.Reason)
	default:
		return fmt.Errorf("unexpected signaling message %q before join confirmation", env.Type)
	}
}

func (r *room) RegisterTranscriptionHandler(handler func([]mediapkg.Fragment)) {
	r.mu.Lock()
	r.onTranscription = handler
	r.mu.Unlock()
}

func (r *room) RegisterDisconnectHandler(handler func(reason string)) {
	r.mu.Lock()
	r.onDisconnect = handler
	r.mu.Unlock()
}

func (r *room) Disconnect() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	_ = r.writeLocked(envelope{Type: "leave"})
	r.mu.Unlock()

	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "leaving"),
		time.Now().Add(closeGraceTimeout))
	return r.conn.Close()
}

func (r *room) readLoop() {
	for {
		_ = r.conn.SetReadDeadline(time.Now().Add(readTimeout))
		var env envelope
		if err := r.conn.ReadJSON(&env); err != nil {
			r.notifyDisconnect(disconnectReason(err, r.isClosed()))
			return
		}
		switch env.Type {
		case "transcription":
			r.dispatchTranscription(env.Payload)
		case "bye":
			var bye byePayload
			_ = json.Unmarshal(env.Payload, &bye)
			reason := bye.Reason
			if reason == "" {
				reason = "remote termination"
			}
			r.notifyDisconnect(reason)
			return
		case "pong":
		default:
			slog.Debug("ignoring unknown signaling message", "type", env.Type)
		}
	}
}

func (r *room) dispatchTranscription(payload json.RawMessage) {
	var batch transcriptionPayload
	if err := json.Unmarshal(payload, &batch); err != nil {
		slog.Warn("malformed transcription batch", "error", err)
		return
	}
	r.mu.Lock()
	handler := r.onTranscription
	r.mu.Unlock()
	if handler == nil {
		return
	}
	now := time.Now()
	fragments := make([]mediapkg.Fragment, 0, len(batch.Segments))
	for _, seg := range batch.Segments {
		fragments = append(fragments, mediapkg.Fragment{
			ID:            seg.ID,
			Text:          seg.Text,
			Final:         seg.Final,
			FirstReceived: now,
			LastReceived:  now,
			Participant:   seg.Participant,
		})
	}
	handler(fragments)
}

func (r *room) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return
		}
		err := r.writeLocked(envelope{Type: "ping"})
		r.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (r *room) writeLocked(env envelope) error {
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return r.conn.WriteJSON(env)
}

func (r *room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *room) notifyDisconnect(reason string) {
	r.mu.Lock()
	handler := r.onDisconnect
	alreadyClosed := r.closed
	r.closed = true
	r.mu.Unlock()
	if handler != nil && !alreadyClosed {
		handler(reason)
	}
	_ = r.conn.Close()
}

func disconnectReason(err error, closedLocally bool) string {
	if closedLocally {
		return "local leave"
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return "remote termination"
	}
	return fmt.Sprintf("connection lost: %v", err)
}
