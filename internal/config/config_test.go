package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GATEKEY_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr %q", cfg.ListenAddr)
	}
	if cfg.Issuer != "gatekey" {
		t.Fatalf("Issuer %q", cfg.Issuer)
	}
	if cfg.StandardAccessTTL != 15*time.Minute {
		t.Fatalf("StandardAccessTTL %v", cfg.StandardAccessTTL)
	}
	if cfg.StandardRefreshTTL != 30*24*time.Hour {
		t.Fatalf("StandardRefreshTTL %v", cfg.StandardRefreshTTL)
	}
	if cfg.ElevatedAccessTTL != 5*time.Minute {
		t.Fatalf("ElevatedAccessTTL %v", cfg.ElevatedAccessTTL)
	}
	if cfg.ElevatedRefreshTTL != 12*time.Hour {
		t.Fatalf("ElevatedRefreshTTL %v", cfg.ElevatedRefreshTTL)
	}
	if cfg.LoginRatePerSecond != 5 || cfg.LoginRateBurst != 10 {
		t.Fatalf("rate limits %d/%d", cfg.LoginRatePerSecond, cfg.LoginRateBurst)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("GATEKEY_AUTH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATEKEY_AUTH_SECRET", "test-secret")
	t.Setenv("GATEKEY_LISTEN_ADDR", ":9999")
	t.Setenv("GATEKEY_ISSUER", "gatekey-staging")
	t.Setenv("GATEKEY_ELEVATED_ACCESS_TTL", "90s")
	t.Setenv("GATEKEY_LOGIN_RATE_PER_SECOND", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("ListenAddr %q", cfg.ListenAddr)
	}
	if cfg.Issuer != "gatekey-staging" {
		t.Fatalf("Issuer %q", cfg.Issuer)
	}
	if cfg.ElevatedAccessTTL != 90*time.Second {
		t.Fatalf("ElevatedAccessTTL %v", cfg.ElevatedAccessTTL)
	}
	if cfg.LoginRatePerSecond != 20 {
		t.Fatalf("LoginRatePerSecond %d", cfg.LoginRatePerSecond)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"GATEKEY_STANDARD_ACCESS_TTL", "not-a-duration"},
		{"GATEKEY_STANDARD_ACCESS_TTL", "-5m"},
		{"GATEKEY_LOGIN_RATE_BURST", "zero"},
		{"GATEKEY_LOGIN_RATE_BURST", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("GATEKEY_AUTH_SECRET", "test-secret")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
