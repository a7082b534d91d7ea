package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// ICSURL is the calendar feed subscription endpoint. The daemon cannot
	// start without one.
	ICSURL string `yaml:"ics_url" json:"ics_url"`

	// Timezone is the IANA timezone tasks are evaluated in (e.g. "Europe/Warsaw").
	// Empty means the system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// TickSeconds is the polling interval of the blocking loop.
	TickSeconds int `yaml:"tick_seconds" json:"tick_seconds"`

	// RefreshCron is a cron-style schedule string (e.g. "0 0 * * *") that
	// ends the current blocking session, re-fetches the feed and rebuilds
	// the day's task set.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HostsPath overrides the platform hosts file location. Empty selects
	// the platform default (/etc/hosts or the Windows drivers\etc\hosts).
	HostsPath string `yaml:"hosts_path" json:"hosts_path"`

	// RedirectIP is the address blocked hosts are pointed at.
	RedirectIP string `yaml:"redirect_ip" json:"redirect_ip"`

	// LogLevel is one of DEBUG, INFO, ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		ICSURL:      "",
		Timezone:    "",
		TickSeconds: 5,
		RefreshCron: "0 0 * * *",
		HostsPath:   "",
		RedirectIP:  "127.0.0.1",
		LogLevel:    "INFO",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.TickSeconds <= 0 {
		c.TickSeconds = 5
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 0 * * *"
	}
	if c.RedirectIP == "" {
		c.RedirectIP = "127.0.0.1"
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "ERROR":
		// ok
	default:
		c.LogLevel = "INFO"
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600, parent
// directory 0700) and returned, so a first run leaves an editable template
// behind.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path, atomically via
// a temp file + rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".focusblock-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
