// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
)

const (
	tableBackups  = "backup_history"
	tableRestores = "restore_history"
)

var backupColumns = []string{
	"id", "file_name", "file_size", "created_at", "completed_at", "status",
	"kind", "user_id", "comment", "file_path", "log",
}

var restoreColumns = []string{
	"id", "backup_id", "restored_at", "completed_at", "user_id", "status", "log",
}

// ListOptions filters ListBackups. Zero values mean no filter.
type ListOptions struct {
	Status models.BackupStatus
	Kind   models.BackupKind
	Limit  int
	Offset int
}

// store is the squirrel-backed history table access.
type store struct {
	db *sql.DB
}

func (s *store) insertBackup(ctx context.Context, b *models.BackupRecord) error {
	query, args, err := database.Builder.Insert(tableBackups).
		Columns("file_name", "file_size", "created_at", "status", "kind", "user_id", "comment", "file_path", "log").
		Values(b.FileName, b.FileSize, b.CreatedAt, string(b.Status), string(b.Kind), b.UserID, b.Comment, b.FilePath, b.Log).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert backup record: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (s *store) finishBackup(ctx context.Context, b *models.BackupRecord) error {
	query, args, err := database.Builder.Update(tableBackups).
		Set("status", string(b.Status)).
		Set("completed_at", b.CompletedAt).
		Set("file_name", b.FileName).
		Set("file_size", b.FileSize).
		Set("file_path", b.FilePath).
		Set("log", b.Log).
		Where(sq.Eq{"id": b.ID, "status": string(models.StatusInProgress)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finalize backup %d: %w", b.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finalize backup %d: record is not in progress", b.ID)
	}
	return nil
}

func (s *store) getBackup(ctx context.Context, id int64) (*models.BackupRecord, error) {
	query, args, err := database.Builder.Select(backupColumns...).From(tableBackups).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	b, err := scanBackup(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backup %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return b, nil
}

func (s *store) listBackups(ctx context.Context, opts ListOptions) ([]*models.BackupRecord, error) {
	b := database.Builder.Select(backupColumns...).From(tableBackups).
		OrderBy("created_at DESC", "id DESC")
	if opts.Status != "" {
		b = b.Where(sq.Eq{"status": string(opts.Status)})
	}
	if opts.Kind != "" {
		b = b.Where(sq.Eq{"kind": string(opts.Kind)})
	}
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			b = b.Limit(^uint64(0) >> 1)
		}
		b = b.Offset(uint64(opts.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	out := make([]*models.BackupRecord, 0)
	for rows.Next() {
		rec, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *store) deleteBackup(ctx context.Context, id int64) error {
	query, args, err := database.Builder.Delete(tableBackups).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete backup %d: %w", id, err)
	}
	return nil
}

func (s *store) stats(ctx context.Context) (*models.BackupStats, error) {
	query, args, err := database.Builder.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN status = 'SUCCESS' THEN file_size ELSE 0 END), 0)",
	).From(tableBackups).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	st := &models.BackupStats{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&st.Total, &st.Success, &st.Failed, &st.TotalSize); err != nil {
		return nil, fmt.Errorf("backup stats: %w", err)
	}
	st.TotalSizeHuman = models.FormatSize(st.TotalSize)

	last, err := s.listBackups(ctx, ListOptions{Status: models.StatusSuccess, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(last) > 0 {
		st.LastBackup = last[0]
	}
	return st, nil
}

func (s *store) insertRestore(ctx context.Context, r *models.RestoreRecord) error {
	query, args, err := database.Builder.Insert(tableRestores).
		Columns("backup_id", "restored_at", "user_id", "status", "log").
		Values(r.BackupID, r.RestoredAt, r.UserID, string(r.Status), r.Log).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert restore record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *store) finishRestore(ctx context.Context, r *models.RestoreRecord) error {
	query, args, err := database.Builder.Update(tableRestores).
		Set("status", string(r.Status)).
		Set("completed_at", r.CompletedAt).
		Set("log", r.Log).
		Where(sq.Eq{"id": r.ID, "status": string(models.StatusInProgress)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finalize restore %d: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finalize restore %d: record is not in progress", r.ID)
	}
	return nil
}

func (s *store) listRestores(ctx context.Context, backupID int64) ([]*models.RestoreRecord, error) {
	query, args, err := database.Builder.Select(restoreColumns...).From(tableRestores).
		Where(sq.Eq{"backup_id": backupID}).
		OrderBy("restored_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list restores: %w", err)
	}
	defer rows.Close()

	out := make([]*models.RestoreRecord, 0)
	for rows.Next() {
		r := &models.RestoreRecord{}
		if err := rows.Scan(&r.ID, &r.BackupID, &r.RestoredAt, &r.CompletedAt, &r.UserID, &r.Status, &r.Log); err != nil {
			return nil, fmt.Errorf("scan restore: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanBackup(row interface{ Scan(...interface{}) error }) (*models.BackupRecord, error) {
	b := &models.BackupRecord{}
	err := row.Scan(&b.ID, &b.FileName, &b.FileSize, &b.CreatedAt, &b.CompletedAt, &b.Status,
		&b.Kind, &b.UserID, &b.Comment, &b.FilePath, &b.Log)
	if err != nil {
		return nil, err
	}
	return b, nil
}
