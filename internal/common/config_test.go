package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Currency != "usd" {
		t.Errorf("currency = %q, want usd", cfg.Currency)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Clients.CoinGecko.GetMinDelay() != 1500*time.Millisecond {
		t.Errorf("min delay = %v, want 1.5s", cfg.Clients.CoinGecko.GetMinDelay())
	}
	if cfg.Clients.CoinGecko.GetCacheTTL() != 5*time.Minute {
		t.Errorf("cache ttl = %v, want 5m", cfg.Clients.CoinGecko.GetCacheTTL())
	}
	if cfg.Clients.CoinGecko.GetTimeout() != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Clients.CoinGecko.GetTimeout())
	}
	if cfg.Clients.CoinGecko.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.Clients.CoinGecko.MaxRetries)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coinfolio.toml")

	content := `
environment = "production"
currency = "EUR"

[server]
port = 9000

[clients.coingecko]
min_delay = "500ms"
cache_ttl = "1m"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Currency != "eur" {
		t.Errorf("currency = %q, want eur (normalized)", cfg.Currency)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Clients.CoinGecko.GetMinDelay() != 500*time.Millisecond {
		t.Errorf("min delay = %v, want 500ms", cfg.Clients.CoinGecko.GetMinDelay())
	}
	// Unset fields keep defaults
	if cfg.Clients.Portfolio.BaseURL != "http://localhost:3004" {
		t.Errorf("portfolio base url = %q, want default", cfg.Clients.Portfolio.BaseURL)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("COINFOLIO_PORT", "7777")
	t.Setenv("COINFOLIO_CURRENCY", "GBP")
	t.Setenv("COINFOLIO_DATA_PATH", "/tmp/coinfolio-test")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Currency != "gbp" {
		t.Errorf("currency = %q, want gbp", cfg.Currency)
	}
	if cfg.Storage.Path != "/tmp/coinfolio-test" {
		t.Errorf("storage path = %q, want /tmp/coinfolio-test", cfg.Storage.Path)
	}
}

func TestGetTimeout_BadDurationFallsBack(t *testing.T) {
	c := CoinGeckoConfig{Timeout: "not-a-duration", MinDelay: "also-bad", CacheTTL: ""}

	if c.GetTimeout() != 10*time.Second {
		t.Errorf("timeout fallback = %v, want 10s", c.GetTimeout())
	}
	if c.GetMinDelay() != 1500*time.Millisecond {
		t.Errorf("min delay fallback = %v, want 1.5s", c.GetMinDelay())
	}
	if c.GetCacheTTL() != 5*time.Minute {
		t.Errorf("cache ttl fallback = %v, want 5m", c.GetCacheTTL())
	}
}
