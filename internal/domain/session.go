package domain

import (
	"sync"

	"secretsession/internal/util/memzero"
)

// Session is the negotiated transfer context shared with the Secret Service.
//
// Copies of a Session share one key. Wipe zeroes it and marks every copy
// defunct: Established then reports false and Key returns nil.
type Session struct {
	Path      ObjectPath
	Algorithm Algorithm
	key       *sessionKey
}

type sessionKey struct {
	mu    sync.RWMutex
	b     []byte
	wiped bool
}

// NewSession builds a session. key is copied and must be nil for plain.
func NewSession(path ObjectPath, alg Algorithm, key []byte) Session {
	k := &sessionKey{}
	if len(key) > 0 {
		k.b = append([]byte(nil), key...)
	}
	return Session{Path: path, Algorithm: alg, key: k}
}

// Established reports whether s came out of a successful negotiation and has
// not been wiped since.
func (s Session) Established() bool {
	if s.Path == "" || s.Algorithm == AlgorithmUnestablished || s.key == nil {
		return false
	}
	s.key.mu.RLock()
	defer s.key.mu.RUnlock()
	return !s.key.wiped
}

// Key returns a copy of the symmetric key. It is nil for plain sessions and
// once the session has been wiped.
func (s Session) Key() []byte {
	if s.key == nil {
		return nil
	}
	s.key.mu.RLock()
	defer s.key.mu.RUnlock()
	if s.key.wiped || s.key.b == nil {
		return nil
	}
	return append([]byte(nil), s.key.b...)
}

// Wipe zeroes the key material shared by every copy of s.
func (s Session) Wipe() {
	if s.key == nil {
		return
	}
	s.key.mu.Lock()
	defer s.key.mu.Unlock()
	memzero.Zero(s.key.b)
	s.key.wiped = true
}

// State is the negotiation state of a negotiator.
type State int

const (
	StateUnestablished State = iota
	StateNegotiating
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateNegotiating:
		return "negotiating"
	case StateEstablished:
		return "established"
	default:
		return "unestablished"
	}
}

// StateChange is delivered to observers on every transition. Session is set
// when To is StateEstablished; Err is set when a negotiation failed.
type StateChange struct {
	From    State
	To      State
	Session Session
	Err     error
}
