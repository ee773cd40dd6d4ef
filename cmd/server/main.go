// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/eftp-registry/internal/admin"
	"github.com/tomtom215/eftp-registry/internal/api"
	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/establishment"
	locimport "github.com/tomtom215/eftp-registry/internal/import"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/supervisor"
	"github.com/tomtom215/eftp-registry/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("backup_dir", cfg.Backup.Dir).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")

	db, err := database.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	if v, err := database.SchemaVersion(db); err == nil {
		logging.Info().Int64("schema_version", v).Msg("Database ready")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	authStack, err := initAuth(ctx, cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	defer authStack.Close()

	backupStack, err := initBackup(cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backups")
	}

	registry := location.NewRegistry(db, location.Observers{location.LogObserver{}, location.MetricsObserver{}})
	handler := api.NewHandler(api.Dependencies{
		DB:             db,
		Backups:        backupStack.manager,
		Registry:       registry,
		Importer:       locimport.NewImporter(registry),
		Establishments: establishment.NewStore(db),
		Menu:           admin.NewMenu(admin.OrderingFromConfig(cfg.Admin)),
		Auth:           authStack.service,
	})
	router := api.NewRouter(handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)),
		authStack.authn, authStack.authz)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Backup, restore and download run inside the request.
		WriteTimeout: cfg.Server.Timeout + cfg.Backup.ToolTimeout,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + cfg.Backup.ToolTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if backupStack.scheduler != nil {
		tree.AddJobService(services.NewBackupSchedulerService(backupStack.scheduler))
		logging.Info().
			Str("schedule", cfg.Backup.Schedule).
			Time("next_run", backupStack.scheduler.Next(time.Now())).
			Msg("Backup scheduler added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("EFTP registry stopped")
}
