package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoad_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	unsetenv(t, "APP_ENV", "DB_PATH", "PORT", "ADMIN_EMAIL", "EXCHANGE_RATE_TTL", "REDIS_DB")

	path := writeDotEnv(t, `
# comment

APP_ENV=production
export DB_PATH=/var/lib/cotiza3d/data.db
ADMIN_EMAIL="owner@taller3d.uy"
EXCHANGE_RATE_TTL=15m
REDIS_DB=2
`)

	cfg := load(path)

	if cfg.Env != "production" || cfg.IsDev() {
		t.Fatalf("Env=%q IsDev=%v, want production/false", cfg.Env, cfg.IsDev())
	}
	if cfg.DBPath != "/var/lib/cotiza3d/data.db" {
		t.Fatalf("DBPath=%q", cfg.DBPath)
	}
	if cfg.AdminEmail != "owner@taller3d.uy" {
		t.Fatalf("AdminEmail=%q", cfg.AdminEmail)
	}
	if cfg.ExchangeRateTTL != 15*time.Minute {
		t.Fatalf("ExchangeRateTTL=%s, want 15m", cfg.ExchangeRateTTL)
	}
	if cfg.RedisDB != 2 {
		t.Fatalf("RedisDB=%d, want 2", cfg.RedisDB)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("Port=%q, want default %q", cfg.Port, defaultPort)
	}
}

func TestLoad_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := load(writeDotEnv(t, "PORT=7070\n"))

	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	unsetenv(t, "APP_ENV", "DB_PATH", "PORT", "EXCHANGE_RATE_TTL", "HTTP_TIMEOUT")

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	if !cfg.IsDev() {
		t.Fatalf("expected development mode by default")
	}
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExchangeRateTTL != defaultRateTTL || cfg.HTTPTimeout != defaultHTTPTimeout {
		t.Fatalf("unexpected duration defaults: %+v", cfg)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("EXCHANGE_RATE_TTL", "soon")
	t.Setenv("HTTP_TIMEOUT", "-5s")
	t.Setenv("REDIS_DB", "two")

	cfg := load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.ExchangeRateTTL != defaultRateTTL {
		t.Fatalf("ExchangeRateTTL=%s", cfg.ExchangeRateTTL)
	}
	if cfg.HTTPTimeout != defaultHTTPTimeout {
		t.Fatalf("HTTPTimeout=%s", cfg.HTTPTimeout)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("RedisDB=%d", cfg.RedisDB)
	}
}
