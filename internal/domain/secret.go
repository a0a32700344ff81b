package domain

import (
	"unicode/utf8"

	"secretsession/internal/util/memzero"
)

// ContentTypeText is the content type of passwords and other text secrets.
const ContentTypeText = "text/plain"

// SecretValue is a secret payload and its content type.
type SecretValue struct {
	ContentType string
	Payload     []byte
}

// NewTextSecret wraps s as a text/plain secret.
func NewTextSecret(s string) SecretValue {
	return SecretValue{ContentType: ContentTypeText, Payload: []byte(s)}
}

// Text returns the payload as a string when the value is text/plain and
// valid UTF-8.
func (v SecretValue) Text() (string, bool) {
	if v.ContentType != ContentTypeText || !utf8.Valid(v.Payload) {
		return "", false
	}
	return string(v.Payload), true
}

// Wipe zeroes the payload in place.
func (v SecretValue) Wipe() { memzero.Zero(v.Payload) }

// WireSecret is the (oayays) struct transferred over the bus. Field order is
// part of the protocol.
type WireSecret struct {
	Session     ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}
