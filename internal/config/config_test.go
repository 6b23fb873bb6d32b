package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.NoShowGrace() != 15*time.Minute {
		t.Errorf("expected default grace 15m, got %s", cfg.NoShowGrace())
	}
	if cfg.SweepSchedule != "@every 5m" {
		t.Errorf("expected default sweep schedule, got %s", cfg.SweepSchedule)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("expected default request timeout 30s, got %s", cfg.RequestTimeout())
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("PORT", "9090")
	t.Setenv("NO_SHOW_GRACE_MINUTES", "30")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.NoShowGrace() != 30*time.Minute {
		t.Errorf("expected grace 30m, got %s", cfg.NoShowGrace())
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                   "development",
			DBMaxConns:            20,
			DBMinConns:            5,
			RequestTimeoutSeconds: 30,
			NoShowGraceMinutes:    15,
		}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected dev config to validate, got %v", err)
	}

	cfg = base()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected production without signing key to fail")
	}
	cfg.AuthSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected production with signing key to validate, got %v", err)
	}

	cfg = base()
	cfg.NoShowGraceMinutes = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative grace to fail")
	}

	cfg = base()
	cfg.RequestTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero timeout to fail")
	}

	cfg = base()
	cfg.DBMinConns = 50
	if err := cfg.Validate(); err == nil {
		t.Error("expected min conns above max to fail")
	}
}
