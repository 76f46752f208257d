package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Config is the main configuration structure
type Config struct {
	// Port is the default output destination (index or name)
	Port          string `yaml:"port,omitempty"`
	PPQN          uint16 `yaml:"ppqn"`
	QueueCapacity int    `yaml:"queue_capacity"`
	PollInterval  string `yaml:"poll_interval"`
	Metronome     bool   `yaml:"metronome"`
	Palette       string `yaml:"palette,omitempty"` // GIMP .gpl file for the monitor
	DebugLog      string `yaml:"debug_log,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		PPQN:          96,
		QueueCapacity: 500, // ALSA default output pool
		PollInterval:  "100ms",
		Metronome:     true,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midistyle"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadWithPath(path)
}

// LoadWithPath reads path over the defaults. A missing file yields the
// defaults.
func LoadWithPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.PPQN == 0 {
		return errors.New("ppqn must be positive")
	}
	if c.QueueCapacity <= 0 {
		return errors.Errorf("queue_capacity must be positive, got %d", c.QueueCapacity)
	}
	if _, err := c.Poll(); err != nil {
		return err
	}
	return nil
}

// Poll parses the poll interval
func (c *Config) Poll() (time.Duration, error) {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, errors.Wrap(err, "poll_interval")
	}
	if d <= 0 {
		return 0, errors.Errorf("poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}
