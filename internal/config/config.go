package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds service configuration. It is read from the environment once
// at startup and treated as immutable afterwards.
type Config struct {
	// Server
	ListenAddr string

	// Database
	DatabaseURL string

	// Tokens
	AuthSecret         string
	Issuer             string
	StandardAccessTTL  time.Duration
	StandardRefreshTTL time.Duration
	ElevatedAccessTTL  time.Duration
	ElevatedRefreshTTL time.Duration

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	ProviderTimeout    time.Duration

	// Rate limiting (login endpoints, per client IP)
	LoginRatePerSecond int
	LoginRateBurst     int
}

// Load reads configuration from GATEKEY_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         getEnv("GATEKEY_LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("GATEKEY_PG_DSN"),
		AuthSecret:         os.Getenv("GATEKEY_AUTH_SECRET"),
		Issuer:             getEnv("GATEKEY_ISSUER", "gatekey"),
		GoogleClientID:     os.Getenv("GATEKEY_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GATEKEY_GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GATEKEY_GOOGLE_REDIRECT_URL"),
	}

	var err error
	if cfg.StandardAccessTTL, err = getEnvDuration("GATEKEY_STANDARD_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StandardRefreshTTL, err = getEnvDuration("GATEKEY_STANDARD_REFRESH_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ElevatedAccessTTL, err = getEnvDuration("GATEKEY_ELEVATED_ACCESS_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ElevatedRefreshTTL, err = getEnvDuration("GATEKEY_ELEVATED_REFRESH_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getEnvDuration("GATEKEY_PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerSecond, err = getEnvInt("GATEKEY_LOGIN_RATE_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.LoginRateBurst, err = getEnvInt("GATEKEY_LOGIN_RATE_BURST", 10); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.AuthSecret) == "" {
		return nil, fmt.Errorf("GATEKEY_AUTH_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}
