package fakeservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsession/internal/domain"
	"secretsession/internal/fakeservice"
	"secretsession/internal/protocol/codec"
	"secretsession/internal/protocol/dh"
	"secretsession/internal/protocol/kdf"
)

var item = domain.ItemPath("mail")

func openDH(t *testing.T, svc *fakeservice.Service) domain.Session {
	t.Helper()
	kp, err := dh.GenerateKeyPair(nil)
	require.NoError(t, err)

	out, path, err := svc.OpenSession(context.Background(), domain.AlgorithmNameDhAes, kp.PublicBytes())
	require.NoError(t, err)

	shared, err := kp.ComputeSharedSecret(out)
	require.NoError(t, err)
	key, err := kdf.Default.Derive(shared)
	require.NoError(t, err)
	return domain.NewSession(path, domain.AlgorithmDhAes128CbcPkcs7, key)
}

func TestOpenSession_Plain(t *testing.T) {
	svc := fakeservice.New()
	out, path, err := svc.OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, path.IsValid())
	assert.Equal(t, 1, svc.OpenSessions())
	assert.EqualValues(t, 1, svc.OpenCalls.Load())
}

func TestOpenSession_DHAgreesOnKey(t *testing.T) {
	svc := fakeservice.New()
	client := openDH(t, svc)

	server, ok := svc.LookupSession(client.Path)
	require.True(t, ok)
	assert.Equal(t, client.Key(), server.Key())
	assert.Len(t, server.Key(), kdf.KeyBytes)
	assert.NotEqual(t, make([]byte, kdf.KeyBytes), server.Key(), "session keeps its own copy of the derived key")

	require.NoError(t, svc.CloseSession(context.Background(), client.Path))
	assert.False(t, server.Established())
	assert.Nil(t, server.Key())
}

func TestOpenSession_Modes(t *testing.T) {
	ctx := context.Background()

	plainOnly := fakeservice.New(fakeservice.WithMode(fakeservice.ModePlainOnly))
	_, _, err := plainOnly.OpenSession(ctx, domain.AlgorithmNameDhAes, []byte{2})
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotSupported)
	_, _, err = plainOnly.OpenSession(ctx, domain.AlgorithmNamePlain, nil)
	assert.NoError(t, err)

	rejectAll := fakeservice.New(fakeservice.WithMode(fakeservice.ModeRejectAll))
	_, _, err = rejectAll.OpenSession(ctx, domain.AlgorithmNamePlain, nil)
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotSupported)

	_, _, err = fakeservice.New().OpenSession(ctx, "rot13", nil)
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotSupported)
}

func TestOpenSession_RejectsDegenerateClientValue(t *testing.T) {
	svc := fakeservice.New()
	_, _, err := svc.OpenSession(context.Background(), domain.AlgorithmNameDhAes, []byte{1})
	assert.ErrorIs(t, err, domain.ErrInvalidPeerValue)
	assert.Zero(t, svc.OpenSessions())
}

func TestOpenSession_GateHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	svc := fakeservice.New(fakeservice.WithGate(gate))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.OpenSession(ctx, domain.AlgorithmNamePlain, nil)
	assert.ErrorIs(t, err, context.Canceled)

	close(gate)
	_, _, err = svc.OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
	assert.NoError(t, err)
}

func TestCloseSession(t *testing.T) {
	svc := fakeservice.New()
	_, path, err := svc.OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
	require.NoError(t, err)

	require.NoError(t, svc.CloseSession(context.Background(), path))
	assert.Zero(t, svc.OpenSessions())
	assert.ErrorIs(t, svc.CloseSession(context.Background(), path), fakeservice.ErrNoSuchObject)
}

func TestSecretTransfer_Encrypted(t *testing.T) {
	ctx := context.Background()
	svc := fakeservice.New()
	sess := openDH(t, svc)

	w, err := codec.Encode(sess, domain.NewTextSecret("hunter2"))
	require.NoError(t, err)
	require.NoError(t, svc.SetSecret(ctx, item, w))

	stored, ok, err := svc.Store().LoadItem(item)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hunter2", string(stored.Secret))

	got, err := svc.GetSecret(ctx, item, sess.Path)
	require.NoError(t, err)
	assert.Len(t, got.Parameters, codec.IVBytes)

	v, err := codec.Decode(sess, got)
	require.NoError(t, err)
	text, ok := v.Text()
	require.True(t, ok)
	assert.Equal(t, "hunter2", text)
}

func TestGetSecrets_SkipsUnknownItems(t *testing.T) {
	ctx := context.Background()
	svc := fakeservice.New()
	require.NoError(t, svc.Store().SaveItem(item, domain.StoredItem{ContentType: "text/plain", Secret: []byte("111")}))

	_, path, err := svc.OpenSession(ctx, domain.AlgorithmNamePlain, nil)
	require.NoError(t, err)

	got, err := svc.GetSecrets(ctx, []domain.ObjectPath{item, domain.ItemPath("missing")}, path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.WireSecret{
		Session:     path,
		Parameters:  []byte{},
		Value:       []byte("111"),
		ContentType: "text/plain",
	}, got[item])
}

func TestSecretCalls_UnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := fakeservice.New()

	_, err := svc.GetSecret(ctx, item, "/nope")
	assert.ErrorIs(t, err, fakeservice.ErrNoSuchObject)
	_, err = svc.GetSecrets(ctx, []domain.ObjectPath{item}, "/nope")
	assert.ErrorIs(t, err, fakeservice.ErrNoSuchObject)
	assert.ErrorIs(t, svc.SetSecret(ctx, item, domain.WireSecret{Session: "/nope"}), fakeservice.ErrNoSuchObject)
}
