package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAPLE_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr default: %q", cfg.Addr)
	}
	if cfg.TokenIssuer != "maplecms" {
		t.Fatalf("issuer default: %q", cfg.TokenIssuer)
	}
	if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 168*time.Hour {
		t.Fatalf("ttl defaults: access=%v refresh=%v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Fatalf("sweep default: %v", cfg.SweepInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAPLE_AUTH_SECRET", "test-secret")
	t.Setenv("MAPLE_ADDR", ":9999")
	t.Setenv("MAPLE_ACCESS_TTL", "5m")
	t.Setenv("MAPLE_RATE_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9999" || cfg.AccessTTL != 5*time.Minute || cfg.RateBurst != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("MAPLE_AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing secret accepted")
	}
}

func TestLoadAdminPairValidation(t *testing.T) {
	t.Setenv("MAPLE_AUTH_SECRET", "test-secret")
	t.Setenv("MAPLE_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("MAPLE_ADMIN_PASSWORD", "")
	if _, err := Load(); err == nil {
		t.Fatal("half-configured admin pair accepted")
	}

	t.Setenv("MAPLE_ADMIN_PASSWORD", "hunter2")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AdminEmail != "admin@example.com" {
		t.Fatalf("admin email: %q", cfg.AdminEmail)
	}
}
