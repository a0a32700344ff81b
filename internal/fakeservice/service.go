package fakeservice

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"secretsession/internal/domain"
	"secretsession/internal/protocol/codec"
	"secretsession/internal/protocol/dh"
	"secretsession/internal/protocol/kdf"
	"secretsession/internal/store"
	"secretsession/internal/util/memzero"
)

var (
	// ErrNoSuchObject is returned for unknown sessions and items.
	ErrNoSuchObject = errors.New("no such object")
)

// Service is an in-process Secret Service.
type Service struct {
	store     domain.ItemStore
	deriver   kdf.Deriver
	log       logrus.FieldLogger
	mode      Mode
	gate      <-chan struct{}
	openErr   error
	peerValue []byte

	mu       sync.Mutex
	sessions map[domain.ObjectPath]domain.Session

	OpenCalls  atomic.Int64
	CloseCalls atomic.Int64
	GetCalls   atomic.Int64
	SetCalls   atomic.Int64
}

var _ domain.SecretService = (*Service)(nil)

// New returns a service backed by an empty memory store unless WithStore is
// given.
func New(opts ...Option) *Service {
	s := &Service{
		deriver:  kdf.Default,
		log:      logrus.StandardLogger(),
		sessions: make(map[domain.ObjectPath]domain.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.NewMemoryItemStore()
	}
	return s
}

// Store returns the item store behind the service.
func (s *Service) Store() domain.ItemStore { return s.store }

// OpenSessions returns the number of sessions currently open.
func (s *Service) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// LookupSession returns the service side of an open session.
func (s *Service) LookupSession(path domain.ObjectPath) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[path]
	return sess, ok
}

func (s *Service) OpenSession(ctx context.Context, algorithm string, input []byte) ([]byte, domain.ObjectPath, error) {
	s.OpenCalls.Inc()
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}
	if s.openErr != nil {
		return nil, "", s.openErr
	}

	alg, err := domain.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, "", err
	}
	switch {
	case alg == domain.AlgorithmPlain && s.mode != ModeRejectAll:
		path := s.register(domain.AlgorithmPlain, nil)
		return []byte{}, path, nil
	case alg == domain.AlgorithmDhAes128CbcPkcs7 && s.mode == ModeFull:
		return s.openDH(input)
	}
	return nil, "", errors.Wrapf(domain.ErrAlgorithmNotSupported, "algorithm %q", algorithm)
}

func (s *Service) openDH(input []byte) ([]byte, domain.ObjectPath, error) {
	kp, err := dh.GenerateKeyPair(nil)
	if err != nil {
		return nil, "", err
	}
	defer kp.Wipe()
	pub := kp.PublicBytes()

	shared, err := kp.ComputeSharedSecret(input)
	if err != nil {
		return nil, "", errors.Wrap(err, "invalid client public value")
	}
	defer memzero.Zero(shared)
	key, err := s.deriver.Derive(shared)
	if err != nil {
		return nil, "", err
	}
	defer memzero.Zero(key)
	path := s.register(domain.AlgorithmDhAes128CbcPkcs7, key)

	if s.peerValue != nil {
		pub = append([]byte(nil), s.peerValue...)
	}
	return pub, path, nil
}

func (s *Service) register(alg domain.Algorithm, key []byte) domain.ObjectPath {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	path := domain.SessionPathPrefix + "/s" + domain.ObjectPath(id)

	s.mu.Lock()
	s.sessions[path] = domain.NewSession(path, alg, key)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"session": path, "algorithm": alg.Name()}).Debug("fake service opened session")
	return path
}

func (s *Service) CloseSession(_ context.Context, path domain.ObjectPath) error {
	s.CloseCalls.Inc()
	s.mu.Lock()
	sess, ok := s.sessions[path]
	delete(s.sessions, path)
	s.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrNoSuchObject, "session %s", path)
	}
	sess.Wipe()
	return nil
}

func (s *Service) GetSecret(_ context.Context, item, session domain.ObjectPath) (domain.WireSecret, error) {
	s.GetCalls.Inc()
	sess, ok := s.LookupSession(session)
	if !ok {
		return domain.WireSecret{}, errors.Wrapf(ErrNoSuchObject, "session %s", session)
	}
	return s.encodeItem(sess, item)
}

// GetSecrets returns the secrets of the items that exist; unknown items are
// left out of the result.
func (s *Service) GetSecrets(_ context.Context, items []domain.ObjectPath, session domain.ObjectPath) (map[domain.ObjectPath]domain.WireSecret, error) {
	s.GetCalls.Inc()
	sess, ok := s.LookupSession(session)
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchObject, "session %s", session)
	}
	out := make(map[domain.ObjectPath]domain.WireSecret, len(items))
	for _, item := range items {
		w, err := s.encodeItem(sess, item)
		if errors.Is(err, ErrNoSuchObject) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[item] = w
	}
	return out, nil
}

func (s *Service) encodeItem(sess domain.Session, item domain.ObjectPath) (domain.WireSecret, error) {
	it, ok, err := s.store.LoadItem(item)
	if err != nil {
		return domain.WireSecret{}, err
	}
	if !ok {
		return domain.WireSecret{}, errors.Wrapf(ErrNoSuchObject, "item %s", item)
	}
	return codec.Encode(sess, domain.SecretValue{ContentType: it.ContentType, Payload: it.Secret})
}

func (s *Service) SetSecret(_ context.Context, item domain.ObjectPath, w domain.WireSecret) error {
	s.SetCalls.Inc()
	sess, ok := s.LookupSession(w.Session)
	if !ok {
		return errors.Wrapf(ErrNoSuchObject, "session %s", w.Session)
	}
	v, err := codec.Decode(sess, w)
	if err != nil {
		return err
	}
	defer v.Wipe()

	it, _, err := s.store.LoadItem(item)
	if err != nil {
		return err
	}
	it.ContentType = v.ContentType
	it.Secret = append([]byte(nil), v.Payload...)
	return s.store.SaveItem(item, it)
}
