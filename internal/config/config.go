package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv         = "development"
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultRateTTL     = time.Hour
	defaultHTTPTimeout = 10 * time.Second
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string

	ExchangeRateURL string
	ExchangeRateTTL time.Duration
	HTTPTimeout     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv || c.Env == "dev"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return load(".env")
}

func load(dotenvPath string) Config {
	// Best-effort: production injects real environment variables.
	if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not read %s: %v", dotenvPath, err)
	}

	cfg := Config{
		Env:             envOr("APP_ENV", defaultEnv),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		DBPath:          envOr("DB_PATH", defaultDBPath),
		Port:            envOr("PORT", defaultPort),
		ExchangeRateURL: os.Getenv("EXCHANGE_RATE_URL"),
		ExchangeRateTTL: durationOr("EXCHANGE_RATE_TTL", defaultRateTTL),
		HTTPTimeout:     durationOr("HTTP_TIMEOUT", defaultHTTPTimeout),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         intOr("REDIS_DB", 0),
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func intOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}
