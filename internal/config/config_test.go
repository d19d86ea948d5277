package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.DiscoveryResultLimit != 3 {
		t.Errorf("expected discovery limit 3, got %d", cfg.DiscoveryResultLimit)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected 15s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DISCOVERY_RESULT_LIMIT", "5")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DiscoveryResultLimit != 5 {
		t.Errorf("expected discovery limit 5, got %d", cfg.DiscoveryResultLimit)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("DISCOVERY_RESULT_LIMIT", "many")

	cfg := Load()

	if cfg.DiscoveryResultLimit != 3 {
		t.Errorf("malformed int should fall back to default, got %d", cfg.DiscoveryResultLimit)
	}
}
