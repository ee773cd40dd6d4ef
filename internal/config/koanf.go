// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eftp-registry/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:        "/data/eftp.sqlite",
			BusyTimeout: 5 * time.Second,
		},
		Backup: BackupConfig{
			Dir:                "/data/backups",
			Compress:           true,
			ScheduleEnabled:    false,
			Schedule:           "0 2 * * *", // daily at 02:00
			MaxBackups:         30,
			ToolTimeout:        10 * time.Minute,
			BreakerMaxFailures: 3,
			BreakerTimeout:     time.Minute,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			SessionTimeout:    24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Admin: AdminConfig{
			AppOrder: []string{"eftp_formel", "eftp_non_formel", "renaloc", "core"},
			ModelOrder: map[string][]string{
				"renaloc":         {"region", "departement", "commune", "quartiervillage"},
				"eftp_formel":     {"etablissementformel"},
				"eftp_non_formel": {"structurenonformelle"},
				"core":            {"backuphistory", "restorehistory"},
			},
		},
	}
}

// LoadWithKoanf loads defaults, then the optional YAML file, then env vars,
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from env vars as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"admin.app_order",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"database_path":         "database.path",
	"database_busy_timeout": "database.busy_timeout",

	"backup_dir":                  "backup.dir",
	"backup_compress":             "backup.compress",
	"backup_schedule_enabled":     "backup.schedule_enabled",
	"backup_schedule":             "backup.schedule",
	"backup_max_backups":          "backup.max_backups",
	"backup_tool_timeout":         "backup.tool_timeout",
	"backup_breaker_max_failures": "backup.breaker_max_failures",
	"backup_breaker_timeout":      "backup.breaker_timeout",

	"auth_mode":             "security.auth_mode",
	"jwt_secret":            "security.jwt_secret",
	"session_timeout":       "security.session_timeout",
	"admin_username":        "security.admin_username",
	"admin_password":        "security.admin_password",
	"revocation_store_path": "security.revocation_store_path",
	"casbin_model_path":     "security.casbin_model_path",
	"casbin_policy_path":    "security.casbin_policy_path",
	"rate_limit_requests":   "security.rate_limit_reqs",
	"rate_limit_window":     "security.rate_limit_window",
	"disable_rate_limit":    "security.rate_limit_disabled",
	"cors_origins":          "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"admin_app_order": "admin.app_order",
}

// envTransformFunc returns "" for unknown variables so koanf skips them.
//
//	BACKUP_DIR -> backup.dir
//	LOG_LEVEL  -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
