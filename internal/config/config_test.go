package config

import (
	"testing"
	"time"
)

func TestLoadRequiresTokenSecrets(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing token secrets to be rejected")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "access-secret-0123456789")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "refresh-secret-0123456789")
	t.Setenv("VIDTUBE_PORT", "9090")
	t.Setenv("VIDTUBE_ACCESS_TOKEN_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected port override 9090, got %d", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("expected access ttl override, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 240*time.Hour {
		t.Fatalf("expected default refresh ttl, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.MigrationDir != "migrations" {
		t.Fatalf("expected default migration dir, got %q", cfg.MigrationDir)
	}
}
