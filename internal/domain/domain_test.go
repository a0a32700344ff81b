package domain_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsession/internal/domain"
)

func TestObjectPath_IsValid(t *testing.T) {
	valid := []domain.ObjectPath{"/", "/a", "/org/freedesktop/secrets/session/s1", "/A_b/9"}
	invalid := []domain.ObjectPath{"", "a", "//", "/a/", "/a//b", "/a-b", "/a.b", "/ä"}
	for _, p := range valid {
		assert.True(t, p.IsValid(), p)
	}
	for _, p := range invalid {
		assert.False(t, p.IsValid(), p)
	}
}

func TestItemPath(t *testing.T) {
	assert.Equal(t, domain.ObjectPath("/org/freedesktop/secrets/aliases/default/mail"), domain.ItemPath("mail"))
	assert.Equal(t, domain.ObjectPath("/org/x/1"), domain.ItemPath("/org/x/1"))
}

func TestAlgorithm(t *testing.T) {
	for _, a := range []domain.Algorithm{domain.AlgorithmPlain, domain.AlgorithmDhAes128CbcPkcs7} {
		got, err := domain.ParseAlgorithm(a.Name())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	assert.Equal(t, "unestablished", domain.AlgorithmUnestablished.String())
	assert.True(t, domain.AlgorithmDhAes128CbcPkcs7.Encrypted())
	assert.False(t, domain.AlgorithmPlain.Encrypted())

	_, err := domain.ParseAlgorithm("dh-ietf1024-sha1-aes128-cbc-pkcs7")
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotSupported)
}

func TestSession(t *testing.T) {
	assert.False(t, domain.Session{}.Established())
	assert.False(t, domain.NewSession("/s", domain.AlgorithmUnestablished, nil).Established())

	key := []byte{1, 2, 3}
	s := domain.NewSession("/s", domain.AlgorithmDhAes128CbcPkcs7, key)
	require.True(t, s.Established())
	key[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, s.Key(), "key is copied in")

	k := s.Key()
	k[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, s.Key(), "key is copied out")

	copied := s
	s.Wipe()
	assert.False(t, copied.Established(), "wipe reaches every copy")
	assert.Nil(t, copied.Key())
	assert.Nil(t, domain.NewSession("/p", domain.AlgorithmPlain, nil).Key())

	domain.Session{}.Wipe()
}

func TestSecretValue_Text(t *testing.T) {
	text, ok := domain.NewTextSecret("pässword").Text()
	assert.True(t, ok)
	assert.Equal(t, "pässword", text)

	_, ok = domain.SecretValue{ContentType: "text/plain", Payload: []byte{0xff}}.Text()
	assert.False(t, ok)
	_, ok = domain.SecretValue{ContentType: "application/octet-stream", Payload: []byte("abc")}.Text()
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	cause := errors.New("broken pipe")
	var err error = &domain.TransportError{Op: "OpenSession", Err: cause}
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "OpenSession: broken pipe", err.Error())

	wrapped := errors.Wrap(err, "negotiating")
	assert.ErrorIs(t, wrapped, domain.ErrTransport)

	err = &domain.CancelledError{Err: cause}
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unestablished", domain.StateUnestablished.String())
	assert.Equal(t, "negotiating", domain.StateNegotiating.String())
	assert.Equal(t, "established", domain.StateEstablished.String())
}
