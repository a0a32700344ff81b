package bus_test

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsession/internal/bus"
	"secretsession/internal/domain"
)

type recorded struct {
	dest   string
	path   dbus.ObjectPath
	method string
	args   []any
	ctx    context.Context
}

// fakeBus answers every call with the next reply queued for its method.
type fakeBus struct {
	calls   []recorded
	replies map[string]*dbus.Call
}

func newFakeBus() *fakeBus { return &fakeBus{replies: map[string]*dbus.Call{}} }

func (b *fakeBus) reply(method string, body ...any) {
	b.replies[method] = &dbus.Call{Body: body}
}

func (b *fakeBus) fail(method string, err error) {
	b.replies[method] = &dbus.Call{Err: err}
}

func (b *fakeBus) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	return &fakeObject{bus: b, dest: dest, path: path}
}

type fakeObject struct {
	dbus.BusObject
	bus  *fakeBus
	dest string
	path dbus.ObjectPath
}

func (o *fakeObject) CallWithContext(ctx context.Context, method string, _ dbus.Flags, args ...any) *dbus.Call {
	o.bus.calls = append(o.bus.calls, recorded{dest: o.dest, path: o.path, method: method, args: args, ctx: ctx})
	if c, ok := o.bus.replies[method]; ok {
		return c
	}
	return &dbus.Call{}
}

const sessionPath = dbus.ObjectPath("/org/freedesktop/secrets/session/s1")

func TestOpenSession_Encrypted(t *testing.T) {
	b := newFakeBus()
	b.reply("org.freedesktop.Secret.Service.OpenSession", dbus.MakeVariant([]byte{9, 9}), sessionPath)
	c := bus.NewClient(b, bus.Config{})

	out, path, err := c.OpenSession(context.Background(), domain.AlgorithmNameDhAes, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, out)
	assert.Equal(t, domain.ObjectPath(sessionPath), path)

	require.Len(t, b.calls, 1)
	call := b.calls[0]
	assert.Equal(t, bus.DefaultService, call.dest)
	assert.Equal(t, dbus.ObjectPath(bus.DefaultPath), call.path)
	require.Len(t, call.args, 2)
	assert.Equal(t, domain.AlgorithmNameDhAes, call.args[0])
	assert.Equal(t, dbus.MakeVariant([]byte{1, 2, 3}), call.args[1])
}

func TestOpenSession_PlainSendsEmptyString(t *testing.T) {
	b := newFakeBus()
	b.reply("org.freedesktop.Secret.Service.OpenSession", dbus.MakeVariant(""), sessionPath)
	c := bus.NewClient(b, bus.Config{Service: "org.example.secrets", Path: "/org/example"})

	out, _, err := c.OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	call := b.calls[0]
	assert.Equal(t, "org.example.secrets", call.dest)
	assert.Equal(t, dbus.ObjectPath("/org/example"), call.path)
	assert.Equal(t, dbus.MakeVariant(""), call.args[1])
}

func TestOpenSession_NotSupported(t *testing.T) {
	b := newFakeBus()
	b.fail("org.freedesktop.Secret.Service.OpenSession", dbus.Error{
		Name: "org.freedesktop.DBus.Error.NotSupported",
		Body: []any{"Algorithm is not supported"},
	})
	c := bus.NewClient(b, bus.Config{})

	_, _, err := c.OpenSession(context.Background(), domain.AlgorithmNameDhAes, []byte{2})
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotSupported)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

func TestOpenSession_OtherBusErrorIsTransport(t *testing.T) {
	b := newFakeBus()
	b.fail("org.freedesktop.Secret.Service.OpenSession", dbus.NewError("org.freedesktop.DBus.Error.ServiceUnknown", nil))
	c := bus.NewClient(b, bus.Config{})

	_, _, err := c.OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
	assert.ErrorIs(t, err, domain.ErrTransport)
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Op, "OpenSession")
}

func TestOpenSession_MalformedReply(t *testing.T) {
	tests := map[string][]any{
		"wrong output type": {dbus.MakeVariant(uint32(7)), sessionPath},
		"non-empty string":  {dbus.MakeVariant("hello"), sessionPath},
		"short body":        {dbus.MakeVariant("")},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			b := newFakeBus()
			b.reply("org.freedesktop.Secret.Service.OpenSession", body...)
			_, _, err := bus.NewClient(b, bus.Config{}).OpenSession(context.Background(), domain.AlgorithmNamePlain, nil)
			assert.ErrorIs(t, err, domain.ErrProtocol)
		})
	}
}

func TestCallTimeout(t *testing.T) {
	b := newFakeBus()
	c := bus.NewClient(b, bus.Config{CallTimeout: time.Minute})

	require.NoError(t, c.CloseSession(context.Background(), domain.ObjectPath(sessionPath)))
	_, ok := b.calls[0].ctx.Deadline()
	assert.True(t, ok)
	assert.Equal(t, "org.freedesktop.Secret.Session.Close", b.calls[0].method)
	assert.Equal(t, sessionPath, b.calls[0].path)
}

func TestGetSecret(t *testing.T) {
	b := newFakeBus()
	b.reply("org.freedesktop.Secret.Item.GetSecret",
		[]any{sessionPath, []byte{1}, []byte("111"), "text/plain"})
	c := bus.NewClient(b, bus.Config{})

	item := domain.ItemPath("mail")
	w, err := c.GetSecret(context.Background(), item, domain.ObjectPath(sessionPath))
	require.NoError(t, err)
	assert.Equal(t, domain.WireSecret{
		Session:     domain.ObjectPath(sessionPath),
		Parameters:  []byte{1},
		Value:       []byte("111"),
		ContentType: "text/plain",
	}, w)
	assert.Equal(t, dbus.ObjectPath(item), b.calls[0].path)
	assert.Equal(t, []any{sessionPath}, b.calls[0].args)
}

func TestGetSecrets(t *testing.T) {
	b := newFakeBus()
	item := dbus.ObjectPath(domain.ItemPath("a"))
	b.reply("org.freedesktop.Secret.Service.GetSecrets", map[dbus.ObjectPath][]any{
		item: {sessionPath, []byte{}, []byte("x"), "text/plain"},
	})
	c := bus.NewClient(b, bus.Config{})

	got, err := c.GetSecrets(context.Background(), []domain.ObjectPath{domain.ObjectPath(item)}, domain.ObjectPath(sessionPath))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []byte("x"), got[domain.ObjectPath(item)].Value)
	assert.Equal(t, []any{[]dbus.ObjectPath{item}, sessionPath}, b.calls[0].args)
}

func TestSetSecret_SendsStruct(t *testing.T) {
	b := newFakeBus()
	c := bus.NewClient(b, bus.Config{})

	item := domain.ItemPath("mail")
	err := c.SetSecret(context.Background(), item, domain.WireSecret{
		Session:     domain.ObjectPath(sessionPath),
		Value:       []byte("v"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)

	require.Len(t, b.calls[0].args, 1)
	// (oayays): nil parameters go out as an empty array
	sig := dbus.SignatureOf(b.calls[0].args[0])
	assert.Equal(t, "(oayays)", sig.String())
}

func TestClose_WithoutConnection(t *testing.T) {
	assert.NoError(t, bus.NewClient(newFakeBus(), bus.Config{}).Close())
}
