package bus

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"

	"secretsession/internal/domain"
)

const (
	DefaultService = "org.freedesktop.secrets"
	DefaultPath    = "/org/freedesktop/secrets"

	serviceInterface = "org.freedesktop.Secret.Service"
	sessionInterface = "org.freedesktop.Secret.Session"
	itemInterface    = "org.freedesktop.Secret.Item"

	errNameNotSupported = "org.freedesktop.DBus.Error.NotSupported"
)

// Objects resolves remote objects; *dbus.Conn satisfies it.
type Objects interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Config selects the bus and the service on it.
type Config struct {
	// Address of the bus; empty means the session bus.
	Address string
	// Service is the well-known bus name of the Secret Service.
	Service string
	// Path is the object path of the service object.
	Path string
	// CallTimeout bounds every method call; zero leaves only the caller's
	// context.
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	return c
}

// Client is a Secret Service client on one bus connection.
type Client struct {
	objects Objects
	conn    *dbus.Conn
	cfg     Config
}

var _ domain.SecretService = (*Client)(nil)

// Dial connects to the bus named by cfg.Address, or the session bus.
func Dial(cfg Config) (*Client, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if cfg.Address == "" {
		conn, err = dbus.ConnectSessionBus()
	} else {
		conn, err = dbus.Connect(cfg.Address)
	}
	if err != nil {
		return nil, &domain.TransportError{Op: "connect", Err: err}
	}
	c := NewClient(conn, cfg)
	c.conn = conn
	return c, nil
}

// NewClient uses objects for every call.
func NewClient(objects Objects, cfg Config) *Client {
	return &Client{objects: objects, cfg: cfg.withDefaults()}
}

// Close closes the bus connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) OpenSession(ctx context.Context, algorithm string, input []byte) ([]byte, domain.ObjectPath, error) {
	var in dbus.Variant
	if algorithm == domain.AlgorithmNamePlain {
		in = dbus.MakeVariant("")
	} else {
		in = dbus.MakeVariant(append([]byte{}, input...))
	}

	var (
		out  dbus.Variant
		path dbus.ObjectPath
	)
	err := c.call(ctx, dbus.ObjectPath(c.cfg.Path), serviceInterface+".OpenSession", []any{&out, &path}, algorithm, in)
	if err != nil {
		return nil, "", err
	}

	output, err := variantBytes(out)
	if err != nil {
		return nil, "", err
	}
	return output, domain.ObjectPath(path), nil
}

func (c *Client) CloseSession(ctx context.Context, session domain.ObjectPath) error {
	return c.call(ctx, dbus.ObjectPath(session), sessionInterface+".Close", nil)
}

func (c *Client) GetSecret(ctx context.Context, item, session domain.ObjectPath) (domain.WireSecret, error) {
	var s wireSecret
	err := c.call(ctx, dbus.ObjectPath(item), itemInterface+".GetSecret", []any{&s}, dbus.ObjectPath(session))
	if err != nil {
		return domain.WireSecret{}, err
	}
	return s.domain(), nil
}

func (c *Client) GetSecrets(ctx context.Context, items []domain.ObjectPath, session domain.ObjectPath) (map[domain.ObjectPath]domain.WireSecret, error) {
	paths := make([]dbus.ObjectPath, len(items))
	for i, it := range items {
		paths[i] = dbus.ObjectPath(it)
	}

	var secrets map[dbus.ObjectPath]wireSecret
	err := c.call(ctx, dbus.ObjectPath(c.cfg.Path), serviceInterface+".GetSecrets", []any{&secrets}, paths, dbus.ObjectPath(session))
	if err != nil {
		return nil, err
	}

	out := make(map[domain.ObjectPath]domain.WireSecret, len(secrets))
	for p, s := range secrets {
		out[domain.ObjectPath(p)] = s.domain()
	}
	return out, nil
}

func (c *Client) SetSecret(ctx context.Context, item domain.ObjectPath, secret domain.WireSecret) error {
	return c.call(ctx, dbus.ObjectPath(item), itemInterface+".SetSecret", nil, fromDomain(secret))
}

// call invokes method on path and stores the reply into out.
func (c *Client) call(ctx context.Context, path dbus.ObjectPath, method string, out []any, args ...any) error {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}

	call := c.objects.Object(c.cfg.Service, path).CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return mapError(method, path, call.Err)
	}
	if len(out) == 0 {
		return nil
	}
	if err := call.Store(out...); err != nil {
		return errors.Wrapf(domain.ErrProtocol, "%s on %s: %v", method, path, err)
	}
	return nil
}

func mapError(method string, path dbus.ObjectPath, err error) error {
	if name := errorName(err); name == errNameNotSupported {
		return errors.Wrapf(domain.ErrAlgorithmNotSupported, "%s on %s: %v", method, path, err)
	}
	return &domain.TransportError{Op: method + " " + string(path), Err: err}
}

func errorName(err error) string {
	var v dbus.Error
	if errors.As(err, &v) {
		return v.Name
	}
	var p *dbus.Error
	if errors.As(err, &p) && p != nil {
		return p.Name
	}
	return ""
}

// variantBytes extracts the OpenSession output: a byte array, or the empty
// string plain sessions answer with.
func variantBytes(v dbus.Variant) ([]byte, error) {
	switch out := v.Value().(type) {
	case []byte:
		return out, nil
	case string:
		if out != "" {
			return nil, errors.Wrapf(domain.ErrProtocol, "unexpected session output %q", out)
		}
		return nil, nil
	case nil:
		return nil, nil
	default:
		return nil, errors.Wrapf(domain.ErrProtocol, "unexpected session output of type %s", v.Signature())
	}
}
