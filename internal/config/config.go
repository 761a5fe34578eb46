// Package config resolves zoomlauncher settings from defaults and the
// optional config.toml in the data directory.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/xhit/go-str2duration/v2"

	"github.com/guilherme-santos/zoomlauncher/internal/logging"
)

const (
	Filename       = "config.toml"
	defaultDirName = ".zoomlauncher"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	DataDir     string
	CalendarID  string
	Lookback    time.Duration
	Lookahead   time.Duration
	MaxStartAge time.Duration
	Retention   time.Duration
	Store       string
	Browser     string
	LogLevel    string
}

// fileConfig mirrors config.toml. Durations are strings such as "5m" or "1d".
type fileConfig struct {
	CalendarID  *string `toml:"calendar_id"`
	Lookback    *string `toml:"lookback"`
	Lookahead   *string `toml:"lookahead"`
	MaxStartAge *string `toml:"max_start_age"`
	Retention   *string `toml:"retention"`
	Store       *string `toml:"store"`
	Browser     *string `toml:"browser"`
	LogLevel    *string `toml:"log_level"`
}

func Default(dataDir string) Config {
	return Config{
		DataDir:     dataDir,
		CalendarID:  "primary",
		Lookback:    5 * time.Minute,
		Lookahead:   5 * time.Minute,
		MaxStartAge: 5 * time.Minute,
		Retention:   24 * time.Hour,
		Store:       StoreFile,
		LogLevel:    "info",
	}
}

// DefaultDataDir is ~/.zoomlauncher.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to find home directory")
	}
	return filepath.Join(home, defaultDirName), nil
}

// Load returns the defaults overlaid with dataDir/config.toml when present.
func Load(dataDir string) (Config, error) {
	cfg := Default(dataDir)
	path := cfg.Path(Filename)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse config", goerr.V("path", path))
	}
	if err := cfg.apply(fc); err != nil {
		return cfg, goerr.Wrap(err, "invalid config", goerr.V("path", path))
	}
	return cfg, nil
}

func (c *Config) apply(fc fileConfig) error {
	setString(&c.CalendarID, fc.CalendarID)
	setString(&c.Store, fc.Store)
	setString(&c.Browser, fc.Browser)
	setString(&c.LogLevel, fc.LogLevel)

	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"lookback", fc.Lookback, &c.Lookback},
		{"lookahead", fc.Lookahead, &c.Lookahead},
		{"max_start_age", fc.MaxStartAge, &c.MaxStartAge},
		{"retention", fc.Retention, &c.Retention},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := ParseDuration(*d.src)
		if err != nil {
			return goerr.Wrap(err, "invalid duration", goerr.V("key", d.key), goerr.V("value", *d.src))
		}
		*d.dst = v
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// ParseDuration accepts time.ParseDuration syntax plus days and weeks.
func ParseDuration(s string) (time.Duration, error) {
	return str2duration.ParseDuration(s)
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return goerr.New("unknown store, use file or sqlite", goerr.V("store", c.Store))
	}
	if c.CalendarID == "" {
		return goerr.New("calendar_id must not be empty")
	}
	for name, d := range map[string]time.Duration{
		"lookback":      c.Lookback,
		"lookahead":     c.Lookahead,
		"max_start_age": c.MaxStartAge,
		"retention":     c.Retention,
	} {
		if d <= 0 {
			return goerr.New("duration must be positive", goerr.V("key", name), goerr.V("value", d.String()))
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Path returns name inside the data directory.
func (c Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}
