package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"secretsession/internal/domain"
	"secretsession/internal/util/memzero"
)

// IVBytes is the iv length of the encrypted algorithm.
const IVBytes = aes.BlockSize

// Codec encodes and decodes secrets. The zero value uses crypto/rand for ivs.
type Codec struct {
	// Rand overrides the iv source.
	Rand io.Reader
}

// Default is the Codec used by the package-level helpers.
var Default = Codec{}

// Encode encodes v with Default.
func Encode(s domain.Session, v domain.SecretValue) (domain.WireSecret, error) {
	return Default.Encode(s, v)
}

// Decode decodes w with Default.
func Decode(s domain.Session, w domain.WireSecret) (domain.SecretValue, error) {
	return Default.Decode(s, w)
}

// Encode builds the wire tuple for v under s. The payload is copied; v is
// not retained.
func (c Codec) Encode(s domain.Session, v domain.SecretValue) (domain.WireSecret, error) {
	if !s.Established() {
		return domain.WireSecret{}, domain.ErrNoSession
	}
	switch s.Algorithm {
	case domain.AlgorithmPlain:
		return domain.WireSecret{
			Session:     s.Path,
			Parameters:  []byte{},
			Value:       append([]byte{}, v.Payload...),
			ContentType: v.ContentType,
		}, nil
	case domain.AlgorithmDhAes128CbcPkcs7:
		return c.encodeAES(s, v)
	default:
		return domain.WireSecret{}, errors.Errorf("unknown algorithm %d", s.Algorithm)
	}
}

// Decode recovers the secret carried by w under s.
func (c Codec) Decode(s domain.Session, w domain.WireSecret) (domain.SecretValue, error) {
	if !s.Established() {
		return domain.SecretValue{}, domain.ErrNoSession
	}
	if w.Session != s.Path {
		return domain.SecretValue{}, errors.Wrapf(domain.ErrDecode,
			"secret encoded for session %s, have %s", w.Session, s.Path)
	}
	switch s.Algorithm {
	case domain.AlgorithmPlain:
		if len(w.Parameters) != 0 {
			return domain.SecretValue{}, errors.Wrap(domain.ErrDecode, "plain secret with parameters")
		}
		return domain.SecretValue{
			ContentType: w.ContentType,
			Payload:     append([]byte{}, w.Value...),
		}, nil
	case domain.AlgorithmDhAes128CbcPkcs7:
		return decodeAES(s, w)
	default:
		return domain.SecretValue{}, errors.Errorf("unknown algorithm %d", s.Algorithm)
	}
}

func (c Codec) encodeAES(s domain.Session, v domain.SecretValue) (domain.WireSecret, error) {
	block, err := newBlock(s)
	if err != nil {
		return domain.WireSecret{}, err
	}

	r := c.Rand
	if r == nil {
		r = rand.Reader
	}
	iv := make([]byte, IVBytes)
	if _, err := io.ReadFull(r, iv); err != nil {
		return domain.WireSecret{}, errors.Wrap(err, "generating iv")
	}

	padded := pad(v.Payload, aes.BlockSize)
	defer memzero.Zero(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return domain.WireSecret{
		Session:     s.Path,
		Parameters:  iv,
		Value:       ciphertext,
		ContentType: v.ContentType,
	}, nil
}

func decodeAES(s domain.Session, w domain.WireSecret) (domain.SecretValue, error) {
	if len(w.Parameters) != IVBytes {
		return domain.SecretValue{}, errors.Wrapf(domain.ErrDecode, "iv of %d bytes", len(w.Parameters))
	}
	if len(w.Value) == 0 || len(w.Value)%aes.BlockSize != 0 {
		return domain.SecretValue{}, errors.Wrapf(domain.ErrDecode, "ciphertext of %d bytes", len(w.Value))
	}
	block, err := newBlock(s)
	if err != nil {
		return domain.SecretValue{}, err
	}

	padded := make([]byte, len(w.Value))
	cipher.NewCBCDecrypter(block, w.Parameters).CryptBlocks(padded, w.Value)

	plain, err := unpad(padded, aes.BlockSize)
	if err != nil {
		memzero.Zero(padded)
		return domain.SecretValue{}, err
	}
	out := append([]byte{}, plain...)
	memzero.Zero(padded)
	return domain.SecretValue{ContentType: w.ContentType, Payload: out}, nil
}

func newBlock(s domain.Session) (cipher.Block, error) {
	key := s.Key()
	if key == nil {
		return nil, domain.ErrNoSession
	}
	defer memzero.Zero(key)
	if len(key) != 16 {
		return nil, errors.Errorf("session key of %d bytes, want 16", len(key))
	}
	return aes.NewCipher(key)
}
