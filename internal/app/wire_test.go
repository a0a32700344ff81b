package app_test

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsession/internal/app"
	"secretsession/internal/domain"
	"secretsession/internal/fakeservice"
	"secretsession/internal/metrics"
	"secretsession/internal/services/session"
	"secretsession/internal/store"
)

func mockConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.Mock.Enabled = true
	cfg.Mock.Seed = map[string]string{"mail": "hunter2"}
	return cfg
}

func TestNewWire_Mock(t *testing.T) {
	ctx := context.Background()
	w, err := app.NewWire(mockConfig(), app.Options{LogOutput: io.Discard})
	require.NoError(t, err)

	v, err := w.Secrets.Get(ctx, domain.ItemPath("mail"))
	require.NoError(t, err)
	text, ok := v.Text()
	require.True(t, ok)
	assert.Equal(t, "hunter2", text)
	assert.Equal(t, domain.AlgorithmDhAes128CbcPkcs7, w.Sessions.Algorithm())

	assert.Equal(t, 1.0, testutil.ToFloat64(
		w.Metrics.Negotiations.WithLabelValues(domain.AlgorithmNameDhAes, metrics.ResultEstablished)))

	require.NoError(t, w.Close(ctx))
	assert.Equal(t, domain.StateUnestablished, w.Sessions.State())
}

func TestNewWire_MockFileStore(t *testing.T) {
	ctx := context.Background()
	cfg := mockConfig()
	cfg.Mock.StoreDir = t.TempDir()

	w, err := app.NewWire(cfg, app.Options{LogOutput: io.Discard})
	require.NoError(t, err)
	require.NoError(t, w.Secrets.Set(ctx, domain.ItemPath("mail"), domain.NewTextSecret("changed")))
	require.NoError(t, w.Close(ctx))

	// Seeds only fill an empty store.
	again, err := app.NewWire(cfg, app.Options{LogOutput: io.Discard})
	require.NoError(t, err)
	v, err := again.Secrets.Get(ctx, domain.ItemPath("mail"))
	require.NoError(t, err)
	assert.Equal(t, "changed", string(v.Payload))

	it, ok, err := store.NewItemFileStore(cfg.Mock.StoreDir, "").LoadItem(domain.ItemPath("mail"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "changed", string(it.Secret))
}

func TestNewWire_RemoteOverride(t *testing.T) {
	fake := fakeservice.New(fakeservice.WithMode(fakeservice.ModePlainOnly))
	cfg := app.DefaultConfig()
	cfg.Session.Policy = session.PolicyPlainOnly

	w, err := app.NewWire(cfg, app.Options{LogOutput: io.Discard, Remote: fake})
	require.NoError(t, err)

	s, err := w.Sessions.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AlgorithmPlain, s.Algorithm)
	assert.EqualValues(t, 1, fake.OpenCalls.Load())
}

func TestNewWire_BadLogLevel(t *testing.T) {
	cfg := mockConfig()
	cfg.Log.Level = "loud"
	_, err := app.NewWire(cfg, app.Options{LogOutput: io.Discard})
	assert.Error(t, err)
}
