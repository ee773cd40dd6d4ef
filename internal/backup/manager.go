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
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// Manager coordinates backup creation, restoration, download and deletion.
type Manager struct {
	// mu allows one backup, restore, delete or retention pass at a time.
	mu sync.Mutex

	cfg   config.BackupConfig
	store *store
	tool  Tool
	fs    afero.Fs
	now   func() time.Time
}

// NewManager creates a Manager. fs must be the filesystem tool writes to.
func NewManager(cfg config.BackupConfig, db *sql.DB, tool Tool, fs afero.Fs) *Manager {
	return &Manager{
		cfg:   cfg,
		store: &store{db: db},
		tool:  tool,
		fs:    fs,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateBackup records and runs one backup. The returned record is always
// SUCCESS or FAILED; err is only set when the history store fails or kind
// is invalid.
func (m *Manager) CreateBackup(ctx context.Context, kind models.BackupKind, comment string, userID *int64) (*models.BackupRecord, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("kind", "unknown backup kind %q", kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.now()
	rec := &models.BackupRecord{
		CreatedAt: start,
		Status:    models.StatusInProgress,
		Kind:      kind,
		UserID:    userID,
		Comment:   strings.TrimSpace(comment),
	}
	if err := m.store.insertBackup(ctx, rec); err != nil {
		return nil, err
	}

	log := logging.Ctx(ctx).With().Int64("backup_id", rec.ID).Str("kind", string(kind)).Logger()
	log.Info().Msg("Backup started")

	runCtx, cancel := m.toolContext(ctx)
	filePath, _, toolErr := m.tool.RunBackup(runCtx, kind, rec.Comment)
	cancel()

	if toolErr == nil {
		rec.FilePath = filePath
		rec.FileName = filepath.Base(filePath)
		info, err := m.fs.Stat(filePath)
		if err != nil {
			toolErr = fmt.Errorf("%w: backup file not found after dump: %v", models.ErrExternalToolFailure, err)
		} else {
			rec.FileSize = info.Size()
		}
	}

	finished := m.now()
	rec.CompletedAt = &finished
	if toolErr != nil {
		rec.Status = models.StatusFailed
		rec.Log = appendLog(rec.Log, "backup failed: "+toolErr.Error())
		log.Error().Err(toolErr).Msg("Backup failed")
	} else {
		rec.Status = models.StatusSuccess
		rec.Log = appendLog(rec.Log, fmt.Sprintf("backup written to %s (%s)", rec.FileName, rec.SizeFormatted()))
		log.Info().Str("file", rec.FileName).Int64("size", rec.FileSize).Msg("Backup completed")
	}

	// The record must leave IN_PROGRESS even if the caller went away.
	if err := m.store.finishBackup(context.WithoutCancel(ctx), rec); err != nil {
		return nil, err
	}
	metrics.RecordBackup(string(kind), string(rec.Status), rec.FileSize, finished.Sub(start))
	return rec, nil
}

// RestoreBackup restores the database from a SUCCESS backup.
func (m *Manager) RestoreBackup(ctx context.Context, backupID int64, userID *int64) (*models.RestoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.store.getBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusSuccess {
		return nil, fmt.Errorf("backup %d is %s: %w", backupID, b.Status, models.ErrNotAvailable)
	}

	rec := &models.RestoreRecord{
		BackupID:   backupID,
		RestoredAt: m.now(),
		UserID:     userID,
		Status:     models.StatusInProgress,
	}
	if err := m.store.insertRestore(ctx, rec); err != nil {
		return nil, err
	}

	log := logging.Ctx(ctx).With().Int64("backup_id", backupID).Int64("restore_id", rec.ID).Logger()
	log.Warn().Str("file", b.FileName).Msg("Restore started")

	var toolErr error
	exists, statErr := afero.Exists(m.fs, b.FilePath)
	switch {
	case statErr != nil:
		toolErr = fmt.Errorf("check backup file %s: %w", b.FilePath, statErr)
	case !exists:
		toolErr = fmt.Errorf("%w: %s", models.ErrFileMissing, b.FilePath)
	default:
		runCtx, cancel := m.toolContext(ctx)
		toolErr = m.tool.RunRestore(runCtx, b.FilePath)
		cancel()
	}

	finished := m.now()
	rec.CompletedAt = &finished
	if toolErr != nil {
		rec.Status = models.StatusFailed
		rec.Log = appendLog(rec.Log, "restore failed: "+toolErr.Error())
		log.Error().Err(toolErr).Msg("Restore failed")
	} else {
		rec.Status = models.StatusSuccess
		rec.Log = appendLog(rec.Log, "restored from "+b.FileName)
		log.Info().Msg("Restore completed")
	}

	if err := m.store.finishRestore(context.WithoutCancel(ctx), rec); err != nil {
		return nil, err
	}
	metrics.RecordRestore(string(rec.Status))
	return rec, nil
}

// DownloadBackup opens the artifact of a SUCCESS backup. The caller closes
// the reader. A SUCCESS record without its file yields ErrFileMissing and
// is left unchanged.
func (m *Manager) DownloadBackup(ctx context.Context, backupID int64) (io.ReadCloser, *models.BackupRecord, error) {
	b, err := m.store.getBackup(ctx, backupID)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != models.StatusSuccess {
		return nil, nil, fmt.Errorf("backup %d is %s: %w", backupID, b.Status, models.ErrNotAvailable)
	}
	f, err := m.fs.Open(b.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		logging.Ctx(ctx).Warn().Int64("backup_id", backupID).Str("file", b.FilePath).Msg("Backup file missing from storage")
		return nil, nil, fmt.Errorf("backup %d: %w", backupID, models.ErrFileMissing)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open backup %d: %w", backupID, err)
	}
	return f, b, nil
}

// DeleteBackup removes the artifact if present, then the record. Restore
// records are removed by the foreign key cascade.
func (m *Manager) DeleteBackup(ctx context.Context, backupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(ctx, backupID)
}

func (m *Manager) deleteLocked(ctx context.Context, backupID int64) error {
	b, err := m.store.getBackup(ctx, backupID)
	if err != nil {
		return err
	}
	if b.FilePath != "" {
		if err := m.fs.Remove(b.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove backup file %s: %w", b.FilePath, err)
		}
	}
	if err := m.store.deleteBackup(ctx, backupID); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int64("backup_id", backupID).Str("file", b.FileName).Msg("Backup deleted")
	return nil
}

// GetBackup returns one record.
func (m *Manager) GetBackup(ctx context.Context, backupID int64) (*models.BackupRecord, error) {
	return m.store.getBackup(ctx, backupID)
}

// ListBackups returns records newest first.
func (m *Manager) ListBackups(ctx context.Context, opts ListOptions) ([]*models.BackupRecord, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, models.NewValidationError("status", "unknown status %q", opts.Status)
	}
	if opts.Kind != "" && !opts.Kind.Valid() {
		return nil, models.NewValidationError("kind", "unknown backup kind %q", opts.Kind)
	}
	return m.store.listBackups(ctx, opts)
}

// ListRestores returns the restore history of one backup, newest first.
func (m *Manager) ListRestores(ctx context.Context, backupID int64) ([]*models.RestoreRecord, error) {
	if _, err := m.store.getBackup(ctx, backupID); err != nil {
		return nil, err
	}
	return m.store.listRestores(ctx, backupID)
}

// Stats summarises the backup history.
func (m *Manager) Stats(ctx context.Context) (*models.BackupStats, error) {
	return m.store.stats(ctx)
}

func (m *Manager) toolContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.ToolTimeout > 0 {
		return context.WithTimeout(ctx, m.cfg.ToolTimeout)
	}
	return context.WithCancel(ctx)
}

func appendLog(log, line string) string {
	if log == "" {
		return line
	}
	return log + "\n" + line
}
