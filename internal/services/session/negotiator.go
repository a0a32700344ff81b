package session

import (
	"context"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"secretsession/internal/crypto"
	"secretsession/internal/domain"
	"secretsession/internal/metrics"
	"secretsession/internal/protocol/codec"
	"secretsession/internal/protocol/dh"
	"secretsession/internal/protocol/kdf"
	"secretsession/internal/util/memzero"
)

// closeTimeout bounds best-effort CloseSession calls made on our own behalf.
const closeTimeout = 5 * time.Second

// Result is delivered by EnsureSessionAsync.
type Result struct {
	Session domain.Session
	Err     error
}

// Negotiator owns the single transfer session of one Secret Service
// connection.
type Negotiator struct {
	remote  domain.SessionOpener
	log     logrus.FieldLogger
	deriver kdf.Deriver
	policy  Policy
	metrics *metrics.Metrics
	timeout time.Duration
	rand    io.Reader
	codec   codec.Codec

	flights singleflight.Group
	// generation changes on every Disconnect; flights of an older generation
	// must not publish their result.
	generation atomic.Uint64

	mu           sync.RWMutex
	state        domain.State
	session      domain.Session
	observers    map[uint64]func(domain.StateChange)
	nextObserver uint64
}

var _ domain.SessionProvider = (*Negotiator)(nil)

// New returns an unestablished negotiator talking to remote.
func New(remote domain.SessionOpener, opts ...Option) *Negotiator {
	n := &Negotiator{
		remote:    remote,
		log:       logrus.StandardLogger(),
		deriver:   kdf.Default,
		policy:    PolicyPreferEncrypted,
		timeout:   DefaultOpenTimeout,
		observers: make(map[uint64]func(domain.StateChange)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// EnsureSession returns the established session, negotiating one first when
// needed. Concurrent callers share a single negotiation.
func (n *Negotiator) EnsureSession(ctx context.Context) (domain.Session, error) {
	if s, ok := n.Session(); ok {
		return s, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Session{}, &domain.CancelledError{Err: err}
	}

	gen := n.generation.Load()
	flightCtx := context.WithoutCancel(ctx)
	ch := n.flights.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return n.negotiate(flightCtx, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Session{}, res.Err
		}
		return res.Val.(domain.Session), nil
	case <-ctx.Done():
		return domain.Session{}, &domain.CancelledError{Err: ctx.Err()}
	}
}

// EnsureSessionAsync runs EnsureSession in the background. The channel
// receives exactly one Result and is then closed.
func (n *Negotiator) EnsureSessionAsync(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		s, err := n.EnsureSession(ctx)
		ch <- Result{Session: s, Err: err}
	}()
	return ch
}

// Session returns the established session, if any.
func (n *Negotiator) Session() (domain.Session, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.state != domain.StateEstablished {
		return domain.Session{}, false
	}
	return n.session, true
}

// State returns the current negotiation state.
func (n *Negotiator) State() domain.State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Algorithm returns the algorithm of the established session, or
// domain.AlgorithmUnestablished.
func (n *Negotiator) Algorithm() domain.Algorithm {
	s, ok := n.Session()
	if !ok {
		return domain.AlgorithmUnestablished
	}
	return s.Algorithm
}

// EncodeSecret encodes v under the established session.
func (n *Negotiator) EncodeSecret(v domain.SecretValue) (domain.WireSecret, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.state != domain.StateEstablished {
		return domain.WireSecret{}, domain.ErrNoSession
	}
	w, err := n.codec.Encode(n.session, v)
	if err != nil {
		return domain.WireSecret{}, err
	}
	n.metrics.Encode(n.session.Algorithm.Name())
	return w, nil
}

// DecodeSecret decodes w under the established session.
func (n *Negotiator) DecodeSecret(w domain.WireSecret) (domain.SecretValue, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.state != domain.StateEstablished {
		return domain.SecretValue{}, domain.ErrNoSession
	}
	v, err := n.codec.Decode(n.session, w)
	if err != nil {
		n.metrics.DecodeFailure()
		return domain.SecretValue{}, err
	}
	return v, nil
}

// Subscribe registers fn for every state transition and returns a function
// that removes it. Observers run synchronously on the goroutine that caused
// the transition and must not call back into the negotiator's mutating
// methods.
func (n *Negotiator) Subscribe(fn func(domain.StateChange)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextObserver
	n.nextObserver++
	n.observers[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.observers, id)
			n.mu.Unlock()
		})
	}
}

// Disconnect drops the session and wipes its key. The remote session is
// closed when the service supports it; that error is returned but the local
// state is reset regardless. A negotiation in flight is discarded.
func (n *Negotiator) Disconnect(ctx context.Context) error {
	n.mu.Lock()
	gen := n.generation.Inc()
	from := n.state
	old := n.session
	n.session = domain.Session{}
	n.state = domain.StateUnestablished
	obs := n.observerList()
	n.mu.Unlock()

	if from != domain.StateUnestablished {
		n.notify(obs, domain.StateChange{From: from, To: domain.StateUnestablished})
	}
	if !old.Established() {
		return nil
	}
	n.log.WithFields(logrus.Fields{
		"session":    old.Path,
		"generation": gen,
	}).Debug("disconnecting secret service session")

	err := n.closeRemote(ctx, old.Path)
	old.Wipe()
	return err
}

// negotiate runs inside the single flight of generation gen.
func (n *Negotiator) negotiate(ctx context.Context, gen uint64) (any, error) {
	n.mu.Lock()
	if n.generation.Load() != gen {
		n.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if n.state == domain.StateEstablished {
		s := n.session
		n.mu.Unlock()
		return s, nil
	}
	from := n.state
	n.state = domain.StateNegotiating
	obs := n.observerList()
	n.mu.Unlock()
	n.notify(obs, domain.StateChange{From: from, To: domain.StateNegotiating})

	log := n.log.WithFields(logrus.Fields{"generation": gen, "policy": n.policy.String()})
	log.Debug("negotiating secret service session")

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	sess, err := n.open(ctx, log)

	n.mu.Lock()
	if n.generation.Load() != gen {
		n.mu.Unlock()
		log.Debug("negotiation finished after disconnect, discarding")
		if err == nil {
			n.discard(sess)
		}
		n.metrics.Negotiation(sess.Algorithm.Name(), metrics.ResultDiscarded)
		return nil, domain.ErrSessionClosed
	}
	if err != nil {
		n.state = domain.StateUnestablished
		obs = n.observerList()
		n.mu.Unlock()
		n.metrics.Negotiation("", metrics.ResultFailed)
		log.WithError(err).Debug("negotiation failed")
		n.notify(obs, domain.StateChange{From: domain.StateNegotiating, To: domain.StateUnestablished, Err: err})
		return nil, err
	}
	n.state = domain.StateEstablished
	n.session = sess
	obs = n.observerList()
	n.mu.Unlock()

	n.metrics.Negotiation(sess.Algorithm.Name(), metrics.ResultEstablished)
	log.WithFields(logrus.Fields{
		"session":   sess.Path,
		"algorithm": sess.Algorithm.Name(),
	}).Info("secret service session established")
	n.notify(obs, domain.StateChange{From: domain.StateNegotiating, To: domain.StateEstablished, Session: sess})
	return sess, nil
}

func (n *Negotiator) open(ctx context.Context, log logrus.FieldLogger) (domain.Session, error) {
	if n.policy == PolicyPlainOnly {
		return n.openPlain(ctx)
	}
	sess, err := n.openEncrypted(ctx, log)
	if !errors.Is(err, domain.ErrAlgorithmNotSupported) {
		return sess, err
	}
	if n.policy == PolicyRequireEncrypted {
		return domain.Session{}, errors.Wrapf(domain.ErrNegotiationRejected,
			"service does not support %s", domain.AlgorithmNameDhAes)
	}
	log.Info("secret service does not support encryption, falling back to plain session")
	return n.openPlain(ctx)
}

func (n *Negotiator) openEncrypted(ctx context.Context, log logrus.FieldLogger) (domain.Session, error) {
	kp, err := dh.GenerateKeyPair(n.rand)
	if err != nil {
		return domain.Session{}, err
	}
	defer kp.Wipe()

	pub := kp.PublicBytes()
	log.WithField("public", crypto.Fingerprint(pub)).Debug("offering dh session")

	out, path, err := n.call(ctx, domain.AlgorithmNameDhAes, pub)
	if err != nil {
		return domain.Session{}, err
	}
	if err := checkPath(path); err != nil {
		return domain.Session{}, err
	}

	shared, err := kp.ComputeSharedSecret(out)
	if err != nil {
		n.abandon(path)
		return domain.Session{}, err
	}
	defer memzero.Zero(shared)

	key, err := n.deriver.Derive(shared)
	if err != nil {
		n.abandon(path)
		return domain.Session{}, errors.Wrap(err, "deriving session key")
	}
	defer memzero.Zero(key)

	return domain.NewSession(path, domain.AlgorithmDhAes128CbcPkcs7, key), nil
}

func (n *Negotiator) openPlain(ctx context.Context) (domain.Session, error) {
	_, path, err := n.call(ctx, domain.AlgorithmNamePlain, nil)
	if errors.Is(err, domain.ErrAlgorithmNotSupported) {
		return domain.Session{}, errors.Wrap(domain.ErrNegotiationRejected, "service does not support plain")
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := checkPath(path); err != nil {
		return domain.Session{}, err
	}
	return domain.NewSession(path, domain.AlgorithmPlain, nil), nil
}

// call wraps remote failures as transport errors, keeping the
// not-supported signal recognisable.
func (n *Negotiator) call(ctx context.Context, algorithm string, input []byte) ([]byte, domain.ObjectPath, error) {
	n.metrics.OpenSession()
	out, path, err := n.remote.OpenSession(ctx, algorithm, input)
	if err == nil {
		return out, path, nil
	}
	if errors.Is(err, domain.ErrAlgorithmNotSupported) || errors.Is(err, domain.ErrTransport) {
		return nil, "", err
	}
	return nil, "", &domain.TransportError{Op: "OpenSession " + algorithm, Err: err}
}

func checkPath(path domain.ObjectPath) error {
	if path == "" || path == "/" || !path.IsValid() {
		return errors.Wrapf(domain.ErrProtocol, "invalid session path %q", path)
	}
	return nil
}

func (n *Negotiator) closeRemote(ctx context.Context, path domain.ObjectPath) error {
	closer, ok := n.remote.(domain.SessionCloser)
	if !ok {
		return nil
	}
	if err := closer.CloseSession(ctx, path); err != nil {
		if errors.Is(err, domain.ErrTransport) {
			return err
		}
		return &domain.TransportError{Op: "Close " + path.String(), Err: err}
	}
	return nil
}

// abandon closes a remote session we are not going to use.
func (n *Negotiator) abandon(path domain.ObjectPath) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := n.closeRemote(ctx, path); err != nil {
		n.log.WithError(err).WithField("session", path).Debug("closing abandoned session failed")
	}
}

func (n *Negotiator) discard(sess domain.Session) {
	n.abandon(sess.Path)
	sess.Wipe()
}

// observerList snapshots observers; n.mu must be held.
func (n *Negotiator) observerList() []func(domain.StateChange) {
	if len(n.observers) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(domain.StateChange), 0, len(ids))
	for _, id := range ids {
		out = append(out, n.observers[id])
	}
	return out
}

func (n *Negotiator) notify(obs []func(domain.StateChange), change domain.StateChange) {
	for _, fn := range obs {
		fn(change)
	}
}
