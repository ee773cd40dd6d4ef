// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolateConfig keeps the developer's config.yaml out of the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backup.Schedule != "0 2 * * *" {
		t.Errorf("Backup.Schedule = %q", cfg.Backup.Schedule)
	}
	if cfg.Backup.MaxBackups != 30 {
		t.Errorf("Backup.MaxBackups = %d, want 30", cfg.Backup.MaxBackups)
	}
	if got := cfg.Admin.ModelOrder["renaloc"]; strings.Join(got, ",") != "region,departement,commune,quartiervillage" {
		t.Errorf("renaloc model order = %v", got)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateConfig(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BACKUP_DIR", "/tmp/eftp-backups")
	t.Setenv("BACKUP_TOOL_TIMEOUT", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ADMIN_APP_ORDER", "core,renaloc")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Backup.Dir != "/tmp/eftp-backups" {
		t.Errorf("Backup.Dir = %q", cfg.Backup.Dir)
	}
	if cfg.Backup.ToolTimeout != 90*time.Second {
		t.Errorf("Backup.ToolTimeout = %v", cfg.Backup.ToolTimeout)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if strings.Join(cfg.Admin.AppOrder, ",") != "core,renaloc" {
		t.Errorf("AppOrder = %v", cfg.Admin.AppOrder)
	}
}

func TestLoadWithKoanf_FileLayer(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
security:
  auth_mode: none
backup:
  max_backups: 5
admin:
  model_order:
    renaloc: [commune, region]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("env should win over file: port = %d", cfg.Server.Port)
	}
	if cfg.Backup.MaxBackups != 5 {
		t.Errorf("Backup.MaxBackups = %d, want 5", cfg.Backup.MaxBackups)
	}
	if cfg.Security.AuthMode != "none" {
		t.Errorf("AuthMode = %q", cfg.Security.AuthMode)
	}
	if got := cfg.Admin.ModelOrder["renaloc"]; strings.Join(got, ",") != "commune,region" {
		t.Errorf("renaloc model order = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"missing db path", func(c *Config) { c.Database.Path = " " }, "DATABASE_PATH"},
		{"missing backup dir", func(c *Config) { c.Backup.Dir = "" }, "BACKUP_DIR"},
		{"negative max backups", func(c *Config) { c.Backup.MaxBackups = -1 }, "BACKUP_MAX_BACKUPS"},
		{"bad cron", func(c *Config) { c.Backup.ScheduleEnabled = true; c.Backup.Schedule = "whenever" }, "BACKUP_SCHEDULE"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "AUTH_MODE"},
		{"no auth in production", func(c *Config) {
			c.Security.AuthMode = "none"
			c.Server.Environment = "production"
		}, "AUTH_MODE=none"},
		{"weak admin password", func(c *Config) {
			c.Security.AdminUsername = "admin"
			c.Security.AdminPassword = "123"
		}, "ADMIN_PASSWORD"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWTSecret = testSecret
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
