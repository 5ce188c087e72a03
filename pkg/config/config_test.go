package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL != "https://api.shelvesai.app" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Layout.RowTolerance != 0.06 || cfg.Layout.SpacingPad != 0.2 {
		t.Errorf("layout defaults = %+v", cfg.Layout)
	}
	if cfg.Cache.Duration() != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", cfg.Cache.Duration())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://staging.shelvesai.app"
token = "secret"

[layout]
row_tolerance = 0.1

[cache]
ttl = "1h"

[cache.redis]
addr = "localhost:6379"

[mongo]
uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://staging.shelvesai.app" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "secret" {
		t.Errorf("token = %q", cfg.Backend.Token)
	}
	if cfg.Layout.RowTolerance != 0.1 {
		t.Errorf("row_tolerance = %v", cfg.Layout.RowTolerance)
	}
	// Unset fields keep their defaults.
	if cfg.Layout.SpacingPad != 0.2 {
		t.Errorf("spacing_pad = %v, want default 0.2", cfg.Layout.SpacingPad)
	}
	if cfg.Cache.Duration() != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Cache.Duration())
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Cache.Redis.Addr)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("mongo uri = %q", cfg.Mongo.URI)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("explicit missing file should error")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("SHELFVISION_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing fallback file should not error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("defaults not applied: %+v", cfg.Server)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid TOML should error")
	}
}
