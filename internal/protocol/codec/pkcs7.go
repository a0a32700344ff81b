package codec

import (
	"crypto/subtle"

	"github.com/pkg/errors"

	"secretsession/internal/domain"
)

// pad appends PKCS#7 padding. The result is always longer than data.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// unpad strips PKCS#7 padding and returns a sub-slice of padded.
func unpad(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) == 0 || len(padded)%blockSize != 0 {
		return nil, errors.Wrap(domain.ErrDecode, "padded length not block aligned")
	}
	n := int(padded[len(padded)-1])
	if n == 0 || n > blockSize {
		return nil, errors.Wrapf(domain.ErrDecode, "invalid padding count %d", n)
	}
	var diff byte
	for _, b := range padded[len(padded)-n:] {
		diff |= b ^ byte(n)
	}
	if subtle.ConstantTimeByteEq(diff, 0) != 1 {
		return nil, errors.Wrap(domain.ErrDecode, "inconsistent padding")
	}
	return padded[:len(padded)-n], nil
}
