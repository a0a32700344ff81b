package app

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"secretsession/internal/bus"
	"secretsession/internal/domain"
	"secretsession/internal/fakeservice"
	"secretsession/internal/logging"
	"secretsession/internal/metrics"
	secretsvc "secretsession/internal/services/secret"
	sessionsvc "secretsession/internal/services/session"
	"secretsession/internal/store"
)

// Options carries what the CLI (or a test) provides on top of Config.
type Options struct {
	// LogOutput receives log lines; nil means stderr.
	LogOutput io.Writer
	// Remote replaces the bus or mock service.
	Remote domain.SecretService
}

// Wire bundles the services the CLI works with.
type Wire struct {
	Config   Config
	Log      *logrus.Logger
	Metrics  *metrics.Metrics
	Remote   domain.SecretService
	Sessions *sessionsvc.Negotiator
	Secrets  *secretsvc.Service

	closeRemote func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, opts Options) (*Wire, error) {
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: opts.LogOutput})
	if err != nil {
		return nil, err
	}

	w := &Wire{Config: cfg, Log: log, Metrics: metrics.New(), closeRemote: func() error { return nil }}

	switch {
	case opts.Remote != nil:
		w.Remote = opts.Remote
	case cfg.Mock.Enabled:
		fake, err := newMockService(cfg, log)
		if err != nil {
			return nil, err
		}
		w.Remote = fake
	default:
		client, err := bus.Dial(cfg.Bus)
		if err != nil {
			return nil, err
		}
		w.Remote = client
		w.closeRemote = client.Close
	}

	w.Sessions = sessionsvc.New(w.Remote,
		sessionsvc.WithLogger(log.WithField("component", "session")),
		sessionsvc.WithPolicy(cfg.Session.Policy),
		sessionsvc.WithDeriver(cfg.Session.Derivation),
		sessionsvc.WithOpenTimeout(cfg.Session.OpenTimeout),
		sessionsvc.WithMetrics(w.Metrics),
	)
	w.Secrets = secretsvc.New(w.Sessions, w.Remote, log.WithField("component", "secret"))
	return w, nil
}

// Close disconnects the session and releases the bus connection.
func (w *Wire) Close(ctx context.Context) error {
	err := w.Sessions.Disconnect(ctx)
	if cerr := w.closeRemote(); err == nil {
		err = cerr
	}
	return err
}

func newMockService(cfg Config, log *logrus.Logger) (*fakeservice.Service, error) {
	var items domain.ItemStore = store.NewMemoryItemStore()
	if cfg.Mock.StoreDir != "" {
		items = store.NewItemFileStore(cfg.Mock.StoreDir, cfg.Mock.Passphrase)
	}
	if err := seedItems(items, cfg.Mock.Seed); err != nil {
		return nil, errors.Wrap(err, "seeding mock items")
	}
	return fakeservice.New(
		fakeservice.WithStore(items),
		fakeservice.WithDeriver(cfg.Session.Derivation),
		fakeservice.WithLogger(log.WithField("component", "mock")),
	), nil
}

// seedItems fills an empty store.
func seedItems(items domain.ItemStore, seed map[string]string) error {
	if len(seed) == 0 {
		return nil
	}
	existing, err := items.ListItems()
	if err != nil || len(existing) > 0 {
		return err
	}
	for name, value := range seed {
		it := domain.StoredItem{Label: name, ContentType: domain.ContentTypeText, Secret: []byte(value)}
		if err := items.SaveItem(domain.ItemPath(name), it); err != nil {
			return err
		}
	}
	return nil
}
