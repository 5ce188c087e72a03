// Package config loads Shelf Vision configuration from TOML files and
// environment variables.
//
// Configuration is optional: every field has a working default, so the CLI
// runs without any config file. Lookup order for the file is the --config
// flag, the SHELFVISION_CONFIG environment variable, then
// ~/.config/shelfvision/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration.
type Config struct {
	Backend Backend `toml:"backend"`
	Layout  Layout  `toml:"layout"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
	Mongo   Mongo   `toml:"mongo"`
}

// Backend configures the ShelvesAI API client.
type Backend struct {
	// BaseURL is the API endpoint. Also used to resolve relative cover
	// references into absolute media URLs.
	BaseURL string `toml:"base_url"`

	// Token is a bearer token for authenticated requests.
	Token string `toml:"token"`
}

// Layout configures the normalization pass.
type Layout struct {
	// RowTolerance is the maximum |y - row average| for row membership.
	RowTolerance float64 `toml:"row_tolerance"`

	// SpacingPad is the horizontal padding factor applied per row,
	// as a fraction of the median gap.
	SpacingPad float64 `toml:"spacing_pad"`
}

// Cache configures the pipeline cache.
type Cache struct {
	// Dir is the file cache directory. Defaults to ~/.cache/shelfvision.
	Dir string `toml:"dir"`

	// TTL is how long entries stay fresh.
	TTL duration `toml:"ttl"`

	// Redis switches the server to a Redis backend when Addr is set.
	Redis Redis `toml:"redis"`
}

// Redis holds Redis connection settings.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Server configures the HTTP API.
type Server struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// Mongo configures shelf persistence. An empty URI selects the in-memory
// store.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// duration wraps time.Duration for TOML decoding of strings like "24h".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Duration returns the cache TTL as a time.Duration.
func (c Cache) Duration() time.Duration { return time.Duration(c.TTL) }

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Backend: Backend{BaseURL: "https://api.shelvesai.app"},
		Layout:  Layout{RowTolerance: 0.06, SpacingPad: 0.2},
		Cache:   Cache{TTL: duration(24 * time.Hour)},
		Server:  Server{Addr: ":8080"},
		Mongo:   Mongo{Database: "shelvesai"},
	}
}

// Load reads configuration from path, layered over [Default]. An empty path
// falls back to SHELFVISION_CONFIG, then the default location; a missing
// file at the fallback locations is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("SHELFVISION_CONFIG")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "shelfvision", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
