// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Security.RBAC.DefaultDeny {
		t.Error("RBAC.DefaultDeny should default to true")
	}
	if got := cfg.Security.RBAC.CacheTTL(); got != 5*time.Minute {
		t.Errorf("RBAC.CacheTTL() = %v, want 5m", got)
	}
	if !cfg.Audit.Enabled {
		t.Error("Audit.Enabled should default to true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 9090
security:
  rbac:
    cache_ttl_seconds: 60
    default_deny: false
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Security.RBAC.CacheTTLSeconds != 60 {
		t.Errorf("CacheTTLSeconds = %d, want 60", cfg.Security.RBAC.CacheTTLSeconds)
	}
	if cfg.Security.RBAC.DefaultDeny {
		t.Error("DefaultDeny should be overridden to false")
	}
	// Untouched sections keep their defaults.
	if !cfg.Security.RBAC.EnablePermissionCache {
		t.Error("EnablePermissionCache should keep its default")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("RBAC_CACHE_TTL", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Security.RBAC.CacheTTLSeconds != 120 {
		t.Errorf("CacheTTLSeconds = %d, want 120", cfg.Security.RBAC.CacheTTLSeconds)
	}
}

func TestLoad_UnknownEnvIgnored(t *testing.T) {
	t.Setenv("SOME_RANDOM_VAR", "value")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for port 0")
	}

	cfg = defaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}

	cfg = defaultConfig()
	cfg.Audit.SampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for sample rate > 1")
	}
}
