package dh

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"secretsession/internal/crypto"
	"secretsession/internal/domain"
	"secretsession/internal/util/memzero"
)

// ErrKeyPairConsumed is returned when a key pair is used for a second exchange.
var ErrKeyPairConsumed = errors.New("diffie-hellman key pair already used")

// KeyPair is the ephemeral local state of one exchange.
type KeyPair struct {
	private *big.Int
	Public  *big.Int
}

// GenerateKeyPair draws a fresh key pair from r, or crypto/rand when r is nil.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	x, err := rand.Int(r, exponentRange)
	if err != nil {
		return nil, errors.Wrap(err, "generating private exponent")
	}
	x.Add(x, two)
	return newKeyPair(x)
}

// NewKeyPair builds a key pair around a known private exponent in [2, p-2].
// It exists for deterministic tests and known-answer vectors. x is copied.
func NewKeyPair(x *big.Int) (*KeyPair, error) {
	if x == nil || x.Cmp(two) < 0 || x.Cmp(primeMinusOne) >= 0 {
		return nil, errors.New("private exponent out of range")
	}
	return newKeyPair(new(big.Int).Set(x))
}

func newKeyPair(x *big.Int) (*KeyPair, error) {
	pub, err := crypto.ModPowInt(generator, x, prime)
	if err != nil {
		memzero.ZeroInt(x)
		return nil, err
	}
	return &KeyPair{private: x, Public: pub}, nil
}

// PublicBytes returns the public value as a minimal big-endian byte string.
func (kp *KeyPair) PublicBytes() []byte { return kp.Public.Bytes() }

// ComputeSharedSecret validates peer and returns peer^x mod p as a minimal
// big-endian byte string. The private exponent is wiped before returning,
// whatever the outcome.
func (kp *KeyPair) ComputeSharedSecret(peer []byte) ([]byte, error) {
	if kp.private == nil {
		return nil, ErrKeyPairConsumed
	}
	defer kp.Wipe()

	y, err := ValidatePeer(peer)
	if err != nil {
		return nil, err
	}
	s, err := crypto.ModPowInt(y, kp.private, prime)
	if err != nil {
		return nil, err
	}
	out := s.Bytes()
	memzero.ZeroInt(s)
	return out, nil
}

// Wipe zeroes the private exponent. It is safe to call more than once.
func (kp *KeyPair) Wipe() {
	memzero.ZeroInt(kp.private)
	kp.private = nil
}

// ValidatePeer parses a big-endian peer public value and rejects 0, 1 and
// values >= p-1.
func ValidatePeer(peer []byte) (*big.Int, error) {
	y := new(big.Int).SetBytes(peer)
	if y.Cmp(one) <= 0 || y.Cmp(primeMinusOne) >= 0 {
		return nil, errors.Wrapf(domain.ErrInvalidPeerValue, "peer value of %d bytes outside (1, p-1)", len(peer))
	}
	return y, nil
}
