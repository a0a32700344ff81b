package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of a big-endian public value.
//
// Leading zero bytes are ignored so padded and minimal encodings of the same
// value print identically. It hashes with SHA-256 and truncates to 10 bytes
// (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(bytes.TrimLeft(pub, "\x00"))
	return hex.EncodeToString(sum[:10])
}
