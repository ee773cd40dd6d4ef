// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package backup manages the lifecycle of database backups and restores.
//
// # Overview
//
// Every backup and restore is recorded in the relational store
// (backup_history, restore_history). A record is created IN_PROGRESS before
// the dump tool runs and is always finalized to SUCCESS or FAILED before the
// call returns. Tool errors never reach the caller: they are appended to the
// record log and surface through the final status.
//
// # Architecture
//
//	┌──────────────┐     ┌─────────────────┐     ┌──────────────┐
//	│  Scheduler   │────▶│     Manager     │────▶│ Tool (dump)  │
//	│ (robfig/cron)│     │  history store  │     │ BreakerTool  │
//	└──────────────┘     └─────────────────┘     └──────────────┘
//	                            │                       │
//	                            ▼                       ▼
//	                     ┌──────────────┐      ┌──────────────┐
//	                     │    SQLite    │      │ afero.Fs     │
//	                     │   history    │      │ backup files │
//	                     └──────────────┘      └──────────────┘
//
// # Concurrency
//
// The Manager holds one mutex across backup, restore, delete and retention:
// at most one of them is in flight at a time, including scheduled runs.
//
// # Usage
//
//	tool := backup.NewBreakerTool(backup.NewSQLiteTool(db, fs, cfg.Dir, cfg.Compress), cfg)
//	manager := backup.NewManager(cfg, db, tool, fs)
//
//	rec, err := manager.CreateBackup(ctx, models.KindManual, "avant migration", &userID)
//	// err is non-nil only for store failures; rec.Status tells the outcome.
package backup
