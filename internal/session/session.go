package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mindhaven/sessioncore/internal/transcript"
)

type State string

const (
	StateFormEntry       State = "form_entry"
	StateKeyProvisioning State = "key_provisioning"
	StateConnecting      State = "connecting"
	StateConnected       State = "connected"
	StateDisconnecting   State = "disconnecting"
	StateTerminated      State = "terminated"
	StateError           State = "error"
)

// JoinRequest carries the join form fields. The passphrase stays inside the
// joining process: it is derived into a key locally and never transmitted.
type JoinRequest struct {
	RoomName    string
	DisplayName string
	Encrypted   bool
	Passphrase  string
	Codec       string
	HighQuality bool
	Region      string
}

// CallSession tracks one participant's call from join form to termination.
type CallSession struct {
	ID          string
	RoomName    string
	DisplayName string
	Encrypted   bool
	Codec       string
	HighQuality bool

	Aggregator *transcript.Aggregator

	mu        sync.Mutex
	state     State
	errReason string
	handedOff bool
	room      roomHandle
}

// roomHandle is the subset of media.Room the session keeps after connecting.
type roomHandle interface {
	Disconnect() error
}

func newCallSession(req JoinRequest) *CallSession {
	return &CallSession{
		ID:          uuid.NewString(),
		RoomName:    req.RoomName,
		DisplayName: req.DisplayName,
		Encrypted:   req.Encrypted,
		Codec:       req.Codec,
		HighQuality: req.HighQuality,
		Aggregator:  transcript.NewAggregator(),
		state:       StateFormEntry,
	}
}

func (s *CallSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrorReason returns the human-readable message set when the session
// entered StateError.
func (s *CallSession) ErrorReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errReason
}

func (s *CallSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *CallSession) fail(reason string) {
	s.mu.Lock()
	s.state = StateError
	s.errReason = reason
	s.mu.Unlock()
}

// markHandedOff flips the hand-off debounce flag; only the first caller per
// session gets true.
func (s *CallSession) markHandedOff() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handedOff {
		return false
	}
	s.handedOff = true
	return true
}
