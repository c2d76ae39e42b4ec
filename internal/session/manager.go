package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mindhaven/sessioncore/internal/connect"
	"github.com/mindhaven/sessioncore/internal/media"
)

var (
	ErrEmptyDisplayName = errors.New("display name is empty")
	ErrRoomBusy         = errors.New("a session for this room is already active")
	ErrSessionNotFound  = errors.New("session not found")
)

// KeyDeriver turns a passphrase into a media encryption key.
type KeyDeriver interface {
	Derive(ctx context.Context, passphrase string) ([media.KeySize]byte, error)
}

// Handoff receives the room name of a terminated session exactly once.
type Handoff func(roomID string)

// Manager owns the active call sessions, one per room.
type Manager struct {
	details   connect.DetailsClient
	transport media.Transport
	deriver   KeyDeriver
	handoff   Handoff

	mu       sync.Mutex
	sessions map[string]*CallSession
}

func NewManager(details connect.DetailsClient, transport media.Transport, deriver KeyDeriver, handoff Handoff) *Manager {
	return &Manager{
		details:   details,
		transport: transport,
		deriver:   deriver,
		handoff:   handoff,
		sessions:  make(map[string]*CallSession),
	}
}

// Join runs the connection sequence for one participant. Validation failures
// leave no session behind; failures past the form stage leave the session in
// StateError so the caller can inspect the reason.
func (m *Manager) Join(ctx context.Context, req JoinRequest) (*CallSession, error) {
	if req.DisplayName == "" {
		return nil, ErrEmptyDisplayName
	}
	if req.RoomName == "" {
		return nil, errors.New("room name is empty")
	}

	sess := newCallSession(req)

	m.mu.Lock()
	if _, ok := m.sessions[req.RoomName]; ok {
		m.mu.Unlock()
		return nil, ErrRoomBusy
	}
	m.sessions[req.RoomName] = sess
	m.mu.Unlock()

	if err := m.connectSession(ctx, sess, req); err != nil {
		m.remove(req.RoomName)
		return sess, err
	}
	return sess, nil
}

func (m *Manager) connectSession(ctx context.Context, sess *CallSession, req JoinRequest) error {
	var key [media.KeySize]byte
	if req.Encrypted {
		sess.setState(StateKeyProvisioning)
		derived, err := m.deriver.Derive(ctx, req.Passphrase)
		if err != nil {
			sess.fail("key provisioning failed")
			return fmt.Errorf("failed to derive encryption key: %w", err)
		}
		key = derived
	}

	sess.setState(StateConnecting)

	details, err := m.details.Fetch(ctx, req.RoomName, req.DisplayName, req.Region)
	if err != nil {
		sess.fail("could not obtain connection details")
		return fmt.Errorf("failed to fetch connection details: %w", err)
	}

	room, err := m.transport.Connect(ctx, details.ServerURL, details.ParticipantToken, media.ConnectOptions{
		Codec:       req.Codec,
		HighQuality: req.HighQuality,
	})
	if err != nil {
		sess.fail("could not reach the media server")
		return fmt.Errorf("failed to connect to media server: %w", err)
	}

	if req.Encrypted {
		if err := room.EnableEncryption(key); err != nil {
			_ = room.Disconnect()
			if errors.Is(err, media.ErrEncryptionUnsupported) {
				sess.fail("end-to-end encryption is not supported here")
			} else {
				sess.fail("could not enable end-to-end encryption")
			}
			return fmt.Errorf("failed to enable encryption: %w", err)
		}
	}

	room.RegisterTranscriptionHandler(sess.Aggregator.Upsert)
	room.RegisterDisconnectHandler(func(reason string) {
		slog.Info("session disconnected by transport", "room", sess.RoomName, "reason", reason)
		m.terminate(sess)
	})

	if err := room.Join(ctx); err != nil {
		_ = room.Disconnect()
		sess.fail("could not join the room")
		return fmt.Errorf("failed to join room: %w", err)
	}

	sess.mu.Lock()
	sess.room = room
	// A transport disconnect can race the join confirmation; once the
	// session was handed off it must stay terminated.
	if sess.handedOff {
		sess.mu.Unlock()
		return nil
	}
	sess.state = StateConnected
	sess.mu.Unlock()

	slog.Info("session connected", "room", sess.RoomName, "session_id", sess.ID, "encrypted", sess.Encrypted)
	return nil
}

// Leave disconnects the session for the given room and hands the room off to
// post-session processing.
func (m *Manager) Leave(roomID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[roomID]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.setState(StateDisconnecting)
	sess.mu.Lock()
	room := sess.room
	sess.mu.Unlock()
	if room != nil {
		if err := room.Disconnect(); err != nil {
			slog.Warn("failed to disconnect from room", "room", roomID, "error", err)
		}
	}
	m.terminate(sess)
	return nil
}

// terminate moves the session to Terminated and triggers the hand-off. It is
// safe to call more than once per session; only the first call has effect.
func (m *Manager) terminate(sess *CallSession) {
	if !sess.markHandedOff() {
		return
	}
	sess.setState(StateTerminated)
	m.remove(sess.RoomName)

	slog.Info("session terminated, handing off for processing", "room", sess.RoomName, "session_id", sess.ID)
	if m.handoff != nil {
		go m.handoff(sess.RoomName)
	}
}

func (m *Manager) remove(roomID string) {
	m.mu.Lock()
	delete(m.sessions, roomID)
	m.mu.Unlock()
}

// Get returns the active session for a room, if any.
func (m *Manager) Get(roomID string) (*CallSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[roomID]
	return sess, ok
}

// Transcript returns the ordered transcript texts for an active session.
func (m *Manager) Transcript(roomID string) ([]media.Fragment, error) {
	m.mu.Lock()
	sess, ok := m.sessions[roomID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Aggregator.Ordered(), nil
}
