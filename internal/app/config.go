package app

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"secretsession/internal/bus"
	"secretsession/internal/domain"
	"secretsession/internal/protocol/kdf"
	"secretsession/internal/services/session"
)

// EnvMockPassphrase seals the mock item file when set.
const EnvMockPassphrase = "SECRETSESSION_MOCK_PASSPHRASE"

// Config holds runtime wiring options for building the app.
type Config struct {
	Bus     bus.Config
	Session SessionConfig
	Log     LogConfig
	Mock    MockConfig
}

type SessionConfig struct {
	Policy      session.Policy
	Derivation  kdf.Deriver
	OpenTimeout time.Duration
}

type LogConfig struct {
	Level string
	JSON  bool
}

// MockConfig replaces the bus with the in-process service.
type MockConfig struct {
	Enabled bool
	// StoreDir keeps mock items in StoreDir/items.json; empty keeps them in
	// memory.
	StoreDir   string
	Passphrase string
	// Seed items written into an empty store, keyed by item name or path.
	Seed map[string]string
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Bus: bus.Config{
			Service:     bus.DefaultService,
			Path:        bus.DefaultPath,
			CallTimeout: 25 * time.Second,
		},
		Session: SessionConfig{
			Policy:      session.PolicyPreferEncrypted,
			Derivation:  kdf.HKDF{},
			OpenTimeout: session.DefaultOpenTimeout,
		},
		Log: LogConfig{Level: "info"},
	}
}

type fileConfig struct {
	Bus struct {
		Address     string `toml:"address"`
		Service     string `toml:"service"`
		Path        string `toml:"path"`
		CallTimeout string `toml:"call_timeout"`
	} `toml:"bus"`
	Session struct {
		Policy      string `toml:"policy"`
		Derivation  string `toml:"derivation"`
		OpenTimeout string `toml:"open_timeout"`
	} `toml:"session"`
	Log struct {
		Level string `toml:"level"`
		JSON  bool   `toml:"json"`
	} `toml:"log"`
	Mock struct {
		Enabled  bool              `toml:"enabled"`
		StoreDir string            `toml:"store_dir"`
		Seed     map[string]string `toml:"seed"`
	} `toml:"mock"`
}

// LoadConfig reads path over DefaultConfig. An empty path yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, errors.Wrapf(err, "load config %s", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.Errorf("config %s: unknown key %s", path, undecoded[0])
		}
		if err := apply(&cfg, &raw, meta); err != nil {
			return Config{}, errors.WithMessagef(err, "config %s", path)
		}
	}
	if v, ok := os.LookupEnv(EnvMockPassphrase); ok {
		cfg.Mock.Passphrase = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func apply(cfg *Config, raw *fileConfig, meta toml.MetaData) error {
	if meta.IsDefined("bus", "address") {
		cfg.Bus.Address = strings.TrimSpace(raw.Bus.Address)
	}
	if meta.IsDefined("bus", "service") {
		cfg.Bus.Service = strings.TrimSpace(raw.Bus.Service)
	}
	if meta.IsDefined("bus", "path") {
		cfg.Bus.Path = strings.TrimSpace(raw.Bus.Path)
	}
	if meta.IsDefined("bus", "call_timeout") {
		d, err := parseDuration("bus.call_timeout", raw.Bus.CallTimeout)
		if err != nil {
			return err
		}
		cfg.Bus.CallTimeout = d
	}

	if meta.IsDefined("session", "policy") {
		p, err := session.ParsePolicy(raw.Session.Policy)
		if err != nil {
			return err
		}
		cfg.Session.Policy = p
	}
	if meta.IsDefined("session", "derivation") {
		d, err := kdf.Parse(raw.Session.Derivation)
		if err != nil {
			return err
		}
		cfg.Session.Derivation = d
	}
	if meta.IsDefined("session", "open_timeout") {
		d, err := parseDuration("session.open_timeout", raw.Session.OpenTimeout)
		if err != nil {
			return err
		}
		cfg.Session.OpenTimeout = d
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}

	if meta.IsDefined("mock", "enabled") {
		cfg.Mock.Enabled = raw.Mock.Enabled
	}
	if meta.IsDefined("mock", "store_dir") {
		cfg.Mock.StoreDir = strings.TrimSpace(raw.Mock.StoreDir)
	}
	if meta.IsDefined("mock", "seed") {
		cfg.Mock.Seed = raw.Mock.Seed
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	if d < 0 {
		return 0, errors.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// Validate checks values no default can repair.
func (c Config) Validate() error {
	if !c.Mock.Enabled {
		if strings.TrimSpace(c.Bus.Service) == "" {
			return errors.New("bus.service is required")
		}
		if !domain.ObjectPath(c.Bus.Path).IsValid() {
			return errors.Errorf("bus.path %q is not an object path", c.Bus.Path)
		}
	}
	if c.Session.Derivation == nil {
		return errors.New("session.derivation is required")
	}
	for name := range c.Mock.Seed {
		if !domain.ItemPath(name).IsValid() {
			return errors.Errorf("mock.seed: %q is not a valid item name", name)
		}
	}
	return nil
}
