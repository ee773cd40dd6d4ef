// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package config loads EFTP Registry configuration with Koanf v2.
//
// Sources are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/eftp-registry/config.yaml)
//  3. Environment variables (see envMappings)
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Backup   BackupConfig   `koanf:"backup"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Admin    AdminConfig    `koanf:"admin"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path of the database file. ":memory:" is accepted for tests.
	Path string `koanf:"path"`

	// BusyTimeout is applied as PRAGMA busy_timeout.
	BusyTimeout time.Duration `koanf:"busy_timeout"`
}

// BackupConfig configures the backup lifecycle manager and its scheduler.
type BackupConfig struct {
	// Dir receives backup artifacts.
	Dir string `koanf:"dir"`

	// Compress gzips the dump before it is stored.
	Compress bool `koanf:"compress"`

	// ScheduleEnabled starts the cron-driven scheduled backup service.
	ScheduleEnabled bool `koanf:"schedule_enabled"`

	// Schedule is a standard 5-field cron expression.
	Schedule string `koanf:"schedule"`

	// MaxBackups is how many successful backups retention keeps. 0 disables retention.
	MaxBackups int `koanf:"max_backups"`

	// ToolTimeout bounds a single dump or restore run.
	ToolTimeout time.Duration `koanf:"tool_timeout"`

	// BreakerMaxFailures consecutive tool failures open the circuit breaker.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig configures authentication, authorization and rate limiting.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". "none" treats every request as the admin user.
	AuthMode       string        `koanf:"auth_mode"`
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername/AdminPassword seed the first admin account.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// RevocationStorePath is the BadgerDB directory for revoked tokens.
	// Empty keeps revocations in memory.
	RevocationStorePath string `koanf:"revocation_store_path"`

	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AdminConfig holds the declarative admin menu ordering.
type AdminConfig struct {
	// AppOrder lists app labels in display order.
	AppOrder []string `koanf:"app_order"`

	// ModelOrder maps an app label to its models in display order.
	ModelOrder map[string][]string `koanf:"model_order"`
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether production checks apply.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// Load reads configuration from all sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
