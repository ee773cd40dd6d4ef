// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// restoreTables are copied back in FK order. Users and the backup history
// are never overwritten by a restore.
var restoreTables = []string{
	"regions",
	"departements",
	"communes",
	"quartiers_villages",
	"etablissements_formels",
	"structures_non_formelles",
	"structure_funding_sources",
	"apprenants_formels",
	"filieres_formelles",
	"formateurs_formels",
	"maitres_artisans",
	"apprentis_non_formels",
	"metiers_non_formels",
}

// Ensure SQLiteTool implements Tool
var _ Tool = (*SQLiteTool)(nil)

// SQLiteTool dumps the live database with VACUUM INTO and restores by
// attaching a dump and copying the domain tables back.
type SQLiteTool struct {
	db       *sql.DB
	fs       afero.Fs
	dir      string
	compress bool
	now      func() time.Time
}

// NewSQLiteTool stores artifacts under dir on fs.
func NewSQLiteTool(db *sql.DB, fs afero.Fs, dir string, compress bool) *SQLiteTool {
	return &SQLiteTool{db: db, fs: fs, dir: dir, compress: compress, now: time.Now}
}

// FileName builds backup_<kind>_<YYYYMMDD_HHMMSS>_<shortid>.sqlite[.gz].
func FileName(kind models.BackupKind, at time.Time, compress bool) string {
	name := fmt.Sprintf("backup_%s_%s_%s.sqlite",
		strings.ToLower(string(kind)), at.Format("20060102_150405"), uuid.NewString()[:8])
	if compress {
		name += ".gz"
	}
	return name
}

// RunBackup implements Tool.
func (t *SQLiteTool) RunBackup(ctx context.Context, kind models.BackupKind, _ string) (string, int64, error) {
	tmp, err := os.MkdirTemp("", "eftp-dump-*")
	if err != nil {
		return "", 0, fmt.Errorf("%w: create temp dir: %v", models.ErrExternalToolFailure, err)
	}
	defer os.RemoveAll(tmp)

	dump := filepath.Join(tmp, "dump.sqlite")
	if _, err := t.db.ExecContext(ctx, "VACUUM INTO ?", dump); err != nil {
		return "", 0, fmt.Errorf("%w: vacuum into: %v", models.ErrExternalToolFailure, err)
	}

	if err := t.fs.MkdirAll(t.dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("%w: create backup dir: %v", models.ErrExternalToolFailure, err)
	}
	dest := filepath.Join(t.dir, FileName(kind, t.now(), t.compress))
	if err := t.store(dump, dest); err != nil {
		_ = t.fs.Remove(dest)
		return "", 0, fmt.Errorf("%w: %v", models.ErrExternalToolFailure, err)
	}

	info, err := t.fs.Stat(dest)
	if err != nil {
		return "", 0, fmt.Errorf("%w: stat %s: %v", models.ErrExternalToolFailure, dest, err)
	}
	logging.Debug().Str("file", dest).Int64("size", info.Size()).Msg("Database dump written")
	return dest, info.Size(), nil
}

func (t *SQLiteTool) store(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer in.Close()

	out, err := t.fs.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var w io.Writer = out
	var zw *gzip.Writer
	if t.compress {
		zw = gzip.NewWriter(out)
		w = zw
	}
	if _, err := io.Copy(w, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			out.Close()
			return fmt.Errorf("finish gzip stream: %w", err)
		}
	}
	return out.Close()
}

// RunRestore implements Tool.
func (t *SQLiteTool) RunRestore(ctx context.Context, filePath string) error {
	tmp, err := os.MkdirTemp("", "eftp-restore-*")
	if err != nil {
		return fmt.Errorf("%w: create temp dir: %v", models.ErrExternalToolFailure, err)
	}
	defer os.RemoveAll(tmp)

	local := filepath.Join(tmp, "restore.sqlite")
	if err := t.fetch(filePath, local); err != nil {
		return fmt.Errorf("%w: %v", models.ErrExternalToolFailure, err)
	}

	if err := t.load(ctx, local); err != nil {
		return fmt.Errorf("%w: %v", models.ErrExternalToolFailure, err)
	}
	return nil
}

func (t *SQLiteTool) fetch(src, dest string) error {
	in, err := t.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	var r io.Reader = in
	if strings.HasSuffix(src, ".gz") {
		zr, err := gzip.NewReader(in)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("decompress %s: %w", src, err)
	}
	return out.Close()
}

// load attaches the dump on a dedicated connection. ATTACH cannot run
// inside a transaction, so the copy transaction is opened afterwards.
func (t *SQLiteTool) load(ctx context.Context, file string) (err error) {
	conn, err := t.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS bak", file); err != nil {
		return fmt.Errorf("attach dump: %w", err)
	}
	defer func() {
		if _, derr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE bak"); derr != nil && err == nil {
			err = fmt.Errorf("detach dump: %w", derr)
		}
	}()

	var live, dumped int64
	const versionQuery = "SELECT COALESCE(MAX(version_id), 0) FROM %s.goose_db_version WHERE is_applied"
	if err := conn.QueryRowContext(ctx, fmt.Sprintf(versionQuery, "main")).Scan(&live); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if err := conn.QueryRowContext(ctx, fmt.Sprintf(versionQuery, "bak")).Scan(&dumped); err != nil {
		return fmt.Errorf("read dump schema version: %w", err)
	}
	if live != dumped {
		return fmt.Errorf("dump schema version %d does not match database version %d", dumped, live)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	if err := copyTables(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}
	return nil
}

func copyTables(ctx context.Context, q database.Querier) error {
	// Establishments restrict location deletes, so they go first; the
	// region delete cascades through the rest of the hierarchy.
	for _, table := range []string{"structures_non_formelles", "etablissements_formels", "regions"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM main."+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, table := range restoreTables {
		// Dumps taken before a migration lack its tables.
		var present int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bak.sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&present); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if present == 0 {
			continue
		}
		if _, err := q.ExecContext(ctx, "INSERT INTO main."+table+" SELECT * FROM bak."+table); err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
	}
	return nil
}
