package session

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"secretsession/internal/metrics"
	"secretsession/internal/protocol/codec"
	"secretsession/internal/protocol/kdf"
)

// DefaultOpenTimeout bounds one negotiation when no timeout is configured.
const DefaultOpenTimeout = 30 * time.Second

// Option configures a Negotiator.
type Option func(*Negotiator)

func WithLogger(log logrus.FieldLogger) Option {
	return func(n *Negotiator) { n.log = log }
}

func WithDeriver(d kdf.Deriver) Option {
	return func(n *Negotiator) { n.deriver = d }
}

func WithPolicy(p Policy) Option {
	return func(n *Negotiator) { n.policy = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Negotiator) { n.metrics = m }
}

// WithOpenTimeout bounds each negotiation; zero or less disables the bound.
func WithOpenTimeout(d time.Duration) Option {
	return func(n *Negotiator) { n.timeout = d }
}

// WithRand sets the entropy source for DH private exponents.
func WithRand(r io.Reader) Option {
	return func(n *Negotiator) { n.rand = r }
}

func WithCodec(c codec.Codec) Option {
	return func(n *Negotiator) { n.codec = c }
}
