// Package kdf turns a Diffie-Hellman shared secret into the AES-128 key of a
// dh-ietf1024-sha256-aes128-cbc-pkcs7 session.
package kdf

import (
	"bytes"
	"crypto/sha256"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"

	"secretsession/internal/util/memzero"
)

// KeyBytes is the size of the derived AES-128 key.
const KeyBytes = 16

// groupBytes is the width the HKDF variant pads the shared secret to.
const groupBytes = 128

// Names accepted by Parse.
const (
	NameSHA256 = "sha256"
	NameHKDF   = "hkdf"
)

// Deriver maps a big-endian shared secret to a KeyBytes-long key. It must be
// deterministic.
type Deriver interface {
	Derive(shared []byte) ([]byte, error)
	Name() string
}

// SHA256 hashes the minimal big-endian shared secret with SHA-256 and keeps
// the first 16 bytes.
type SHA256 struct{}

func (SHA256) Name() string { return NameSHA256 }

func (SHA256) Derive(shared []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(shared, "\x00")
	if len(trimmed) == 0 {
		return nil, errors.New("empty shared secret")
	}
	sum := sha256.Sum256(trimmed)
	key := make([]byte, KeyBytes)
	copy(key, sum[:KeyBytes])
	memzero.Zero(sum[:])
	return key, nil
}

// HKDF left-pads the shared secret to the group width and runs HKDF-SHA256
// with no salt and empty info. This is what gnome-keyring, KeePassXC and
// libsecret compute.
type HKDF struct{}

func (HKDF) Name() string { return NameHKDF }

func (HKDF) Derive(shared []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(shared, "\x00")
	if len(trimmed) == 0 {
		return nil, errors.New("empty shared secret")
	}
	if len(trimmed) > groupBytes {
		return nil, errors.Errorf("shared secret of %d bytes exceeds group width", len(trimmed))
	}
	ikm := make([]byte, groupBytes)
	copy(ikm[groupBytes-len(trimmed):], trimmed)
	defer memzero.Zero(ikm)

	key := make([]byte, KeyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, nil), key); err != nil {
		return nil, errors.Wrap(err, "hkdf expand")
	}
	return key, nil
}

// Default is the derivation used when none is configured.
var Default Deriver = SHA256{}

// Parse maps a configuration name to a Deriver. The empty name selects Default.
func Parse(name string) (Deriver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return Default, nil
	case NameSHA256:
		return SHA256{}, nil
	case NameHKDF:
		return HKDF{}, nil
	default:
		return nil, errors.Errorf("unknown key derivation %q", name)
	}
}
