package fakeservice

import (
	"github.com/sirupsen/logrus"

	"secretsession/internal/domain"
	"secretsession/internal/protocol/kdf"
)

// Mode selects the algorithms the service accepts.
type Mode int

const (
	// ModeFull accepts both algorithms.
	ModeFull Mode = iota
	// ModePlainOnly answers NotSupported to the DH algorithm.
	ModePlainOnly
	// ModeRejectAll answers NotSupported to every algorithm.
	ModeRejectAll
)

type Option func(*Service)

func WithMode(m Mode) Option {
	return func(s *Service) { s.mode = m }
}

func WithStore(st domain.ItemStore) Option {
	return func(s *Service) { s.store = st }
}

// WithDeriver sets the key derivation the service uses; it must match the
// client's.
func WithDeriver(d kdf.Deriver) Option {
	return func(s *Service) { s.deriver = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithGate makes OpenSession block until gate is closed or receives.
func WithGate(gate <-chan struct{}) Option {
	return func(s *Service) { s.gate = gate }
}

// WithOpenError makes every OpenSession fail with err.
func WithOpenError(err error) Option {
	return func(s *Service) { s.openErr = err }
}

// WithPeerValue replaces the DH public value sent back to the client.
func WithPeerValue(v []byte) Option {
	return func(s *Service) { s.peerValue = append([]byte(nil), v...) }
}
