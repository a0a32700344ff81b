package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsession/internal/logging"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	t.Setenv(logging.EnvLogJSON, "")

	log, err := logging.New(logging.Options{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_JSONOutput(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	t.Setenv(logging.EnvLogJSON, "")

	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Level: "debug", JSON: true, Output: &buf})
	require.NoError(t, err)

	log.WithField("algorithm", "plain").Debug("session established")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "plain", entry["algorithm"])
	assert.Equal(t, "session established", entry["msg"])
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "warning")
	t.Setenv(logging.EnvLogJSON, "true")

	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Warn("x")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_BadLevel(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	_, err := logging.New(logging.Options{Level: "loud"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := logging.Discard()
	log.Error("dropped")
	assert.Equal(t, logrus.PanicLevel, log.GetLevel())
}
