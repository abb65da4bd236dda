package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8001" {
		t.Fatalf("expected default port 8001, got %s", cfg.Server.Port)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Fatalf("unexpected default github url: %s", cfg.GitHub.BaseURL)
	}
	if cfg.NATS.URL != "" {
		t.Fatalf("expected NATS disabled by default, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yamlData := `
server:
  port: "9090"
github:
  timeout: 5s
cache:
  permission_ttl: 90s
`
	if err := os.WriteFile(path, []byte(yamlData), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.GitHub.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.GitHub.Timeout)
	}
	if cfg.Cache.PermissionTTL != 90*time.Second {
		t.Fatalf("expected 90s ttl, got %s", cfg.Cache.PermissionTTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.MaxConns != 15 {
		t.Fatalf("expected default max conns, got %d", cfg.Postgres.MaxConns)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("GITRELLO_GH_PORT", "7777")
	t.Setenv("GITHUB_API_URL", "https://github.internal/api/v3")
	t.Setenv("GITRELLO_GH_PERMISSION_TTL", "2m")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Fatalf("env should win over yaml, got %s", cfg.Server.Port)
	}
	if cfg.GitHub.BaseURL != "https://github.internal/api/v3" {
		t.Fatalf("unexpected github url: %s", cfg.GitHub.BaseURL)
	}
	if cfg.Cache.PermissionTTL != 2*time.Minute {
		t.Fatalf("unexpected ttl: %s", cfg.Cache.PermissionTTL)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"bad callback url": {"GITRELLO_GH_CALLBACK_URL": "not a url"},
		"bad gitrello url": {"GITRELLO_URL": "::"},
	} {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
