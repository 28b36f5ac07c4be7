// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/botserver/config.yaml",
	"/etc/botserver/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file,
// and environment variables, in that order of increasing priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envTransformFunc maps known environment variables onto config paths.
// Unknown variables map to "" and are skipped, so stray environment does
// not leak into the configuration.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		"server_host":       "server.host",
		"server_port":       "server.port",
		"server_timeout":    "server.timeout",
		"server_rate_limit": "server.rate_limit",

		"rbac_cache_ttl":           "security.rbac.cache_ttl_seconds",
		"rbac_enable_cache":        "security.rbac.enable_permission_cache",
		"rbac_group_inheritance":   "security.rbac.enable_group_inheritance",
		"rbac_default_deny":        "security.rbac.default_deny",
		"rbac_audit_all_decisions": "security.rbac.audit_all_decisions",

		"audit_enabled":     "audit.enabled",
		"audit_log_allowed": "audit.log_allowed",
		"audit_log_denied":  "audit.log_denied",
		"audit_sample_rate": "audit.sample_rate",
		"audit_buffer_size": "audit.buffer_size",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
