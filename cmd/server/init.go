// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/afero"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/authz"
	"github.com/tomtom215/eftp-registry/internal/backup"
	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/logging"
)

type authStack struct {
	service *auth.Service
	authn   *auth.Middleware
	authz   *authz.Middleware
	revoked auth.RevocationStore
}

func (a *authStack) Close() {
	if a.revoked == nil {
		return
	}
	if err := a.revoked.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing revocation store")
	}
}

// initAuth builds authentication and authorization. In none mode every
// request runs as an anonymous admin and no users are consulted.
func initAuth(ctx context.Context, cfg *config.Config, db *sql.DB) (*authStack, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, err
	}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		ModelPath:  cfg.Security.CasbinModelPath,
		PolicyPath: cfg.Security.CasbinPolicyPath,
	})
	if err != nil {
		return nil, err
	}
	stack := &authStack{authz: authz.NewMiddleware(enforcer)}

	if mode == auth.AuthModeNone {
		logging.Warn().Msg("Authentication disabled (AUTH_MODE=none)")
		stack.authn = auth.NewMiddleware(nil, mode)
		return stack, nil
	}

	jm, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, err
	}
	revoked, err := auth.OpenBadgerRevocationStore(cfg.Security.RevocationStorePath)
	if err != nil {
		return nil, fmt.Errorf("open revocation store: %w", err)
	}
	stack.revoked = revoked

	users := auth.NewUserStore(db)
	if cfg.Security.AdminUsername != "" && cfg.Security.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			stack.Close()
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
		if created {
			logging.Info().Str("username", cfg.Security.AdminUsername).Msg("Admin user created")
		}
	}

	stack.service = auth.NewService(users, jm, revoked)
	stack.authn = auth.NewMiddleware(stack.service, mode)
	return stack, nil
}

type backupStack struct {
	manager   *backup.Manager
	scheduler *backup.Scheduler
}

// initBackup wires the dump tool behind a circuit breaker, the manager,
// and the scheduler when enabled.
func initBackup(cfg *config.Config, db *sql.DB) (*backupStack, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.Backup.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	tool := backup.NewBreakerTool(backup.NewSQLiteTool(db, fs, cfg.Backup.Dir, cfg.Backup.Compress), cfg.Backup)
	stack := &backupStack{manager: backup.NewManager(cfg.Backup, db, tool, fs)}

	if cfg.Backup.ScheduleEnabled {
		s, err := backup.NewScheduler(stack.manager, cfg.Backup.Schedule)
		if err != nil {
			return nil, err
		}
		stack.scheduler = s
	}
	return stack, nil
}
