package secret

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"secretsession/internal/domain"
)

// Service moves secrets between callers and the Secret Service.
type Service struct {
	sessions domain.SessionProvider
	remote   domain.SecretService
	log      logrus.FieldLogger
}

// New constructs a secret Service.
func New(sessions domain.SessionProvider, remote domain.SecretService, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{sessions: sessions, remote: remote, log: log}
}

// Get returns the secret of item.
func (s *Service) Get(ctx context.Context, item domain.ObjectPath) (domain.SecretValue, error) {
	sess, err := s.sessions.EnsureSession(ctx)
	if err != nil {
		return domain.SecretValue{}, err
	}

	w, err := s.remote.GetSecret(ctx, item, sess.Path)
	if err != nil {
		return domain.SecretValue{}, transportError("GetSecret "+item.String(), err)
	}
	v, err := s.sessions.DecodeSecret(w)
	if err != nil {
		return domain.SecretValue{}, errors.WithMessagef(err, "item %s", item)
	}
	s.log.WithFields(logrus.Fields{"item": item, "content_type": v.ContentType}).Debug("secret received")
	return v, nil
}

// GetMany returns the secrets of items in one call. Items unknown to the
// service are absent from the result.
func (s *Service) GetMany(ctx context.Context, items []domain.ObjectPath) (map[domain.ObjectPath]domain.SecretValue, error) {
	sess, err := s.sessions.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	wire, err := s.remote.GetSecrets(ctx, items, sess.Path)
	if err != nil {
		return nil, transportError("GetSecrets", err)
	}

	out := make(map[domain.ObjectPath]domain.SecretValue, len(wire))
	for item, w := range wire {
		v, err := s.sessions.DecodeSecret(w)
		if err != nil {
			for _, done := range out {
				done.Wipe()
			}
			return nil, errors.WithMessagef(err, "item %s", item)
		}
		out[item] = v
	}
	return out, nil
}

// Set stores v as the secret of item.
func (s *Service) Set(ctx context.Context, item domain.ObjectPath, v domain.SecretValue) error {
	if _, err := s.sessions.EnsureSession(ctx); err != nil {
		return err
	}

	w, err := s.sessions.EncodeSecret(v)
	if err != nil {
		return err
	}
	if err := s.remote.SetSecret(ctx, item, w); err != nil {
		return transportError("SetSecret "+item.String(), err)
	}
	s.log.WithField("item", item).Debug("secret stored")
	return nil
}

func transportError(op string, err error) error {
	if errors.Is(err, domain.ErrTransport) {
		return err
	}
	return &domain.TransportError{Op: op, Err: err}
}
