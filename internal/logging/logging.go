// Package logging builds the logrus logger shared by every component.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	EnvLogLevel = "SECRETSESSION_LOG_LEVEL"
	EnvLogJSON  = "SECRETSESSION_LOG_JSON"
)

// Options configure New. Environment variables override Level and JSON.
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New returns a logger configured from opts and the environment.
func New(opts Options) (*logrus.Logger, error) {
	applyEnvOverrides(&opts)

	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := parseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}

	log := logrus.New()
	log.SetLevel(level)
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stderr)
	}
	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func applyEnvOverrides(opts *Options) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		opts.Level = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvLogJSON))); err == nil {
		opts.JSON = v
	}
}

func parseLevel(raw string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "off", "none", "disabled":
		return logrus.PanicLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	}
	lvl, err := logrus.ParseLevel(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "log level %q", raw)
	}
	return lvl, nil
}
