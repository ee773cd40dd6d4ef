// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package database opens the SQLite store and applies the embedded goose
// migrations. Foreign keys are always enabled: the location hierarchy and the
// backup history rely on ON DELETE CASCADE, RESTRICT and SET NULL.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Builder is the squirrel statement builder used by every store.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Open opens (creating if needed) the database at cfg.Path and migrates it.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path, busy))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One writer connection: SQLite serialises writes anyway, and a single
	// connection keeps ATTACH and PRAGMA state consistent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database opened")
	return db, nil
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if path != ":memory:" && !strings.HasPrefix(path, "file::memory:") {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	q.Add("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied goose version.
func SchemaVersion(db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}

// WithTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a SQLite FOREIGN KEY failure.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
