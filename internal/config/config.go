// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

// Package config loads layered configuration: struct defaults, then an
// optional YAML file, then environment variables. Later layers win.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host      string        `koanf:"host" validate:"required"`
	Port      int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout   time.Duration `koanf:"timeout" validate:"min=1s"`
	RateLimit int           `koanf:"rate_limit" validate:"min=0"`
}

// SecurityConfig groups security subsections.
type SecurityConfig struct {
	RBAC RBACConfig `koanf:"rbac"`
}

// RBACConfig configures the authorization engine.
type RBACConfig struct {
	CacheTTLSeconds        int  `koanf:"cache_ttl_seconds" validate:"min=1"`
	EnablePermissionCache  bool `koanf:"enable_permission_cache"`
	EnableGroupInheritance bool `koanf:"enable_group_inheritance"`
	DefaultDeny            bool `koanf:"default_deny"`
	AuditAllDecisions      bool `koanf:"audit_all_decisions"`
}

// CacheTTL returns the cache TTL as a duration.
func (c RBACConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AuditConfig configures the async audit logger.
type AuditConfig struct {
	Enabled    bool    `koanf:"enabled"`
	LogAllowed bool    `koanf:"log_allowed"`
	LogDenied  bool    `koanf:"log_denied"`
	SampleRate float64 `koanf:"sample_rate" validate:"min=0,max=1"`
	BufferSize int     `koanf:"buffer_size" validate:"min=1"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the defaults layer. Production values; the RBAC
// engine defaults to deny.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			Timeout:   30 * time.Second,
			RateLimit: 100,
		},
		Security: SecurityConfig{
			RBAC: RBACConfig{
				CacheTTLSeconds:        300,
				EnablePermissionCache:  true,
				EnableGroupInheritance: true,
				DefaultDeny:            true,
				AuditAllDecisions:      false,
			},
		},
		Audit: AuditConfig{
			Enabled:    true,
			LogAllowed: true,
			LogDenied:  true,
			SampleRate: 1.0,
			BufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// findConfigFile returns the first existing config file path, honoring
// the CONFIG_PATH override. Empty when none is found.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
