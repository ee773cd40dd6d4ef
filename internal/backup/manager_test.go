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
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
)

const fakeDump = "fake dump payload"

// fakeTool writes a fixed payload to fs and records restores.
type fakeTool struct {
	fs         afero.Fs
	dir        string
	backupErr  error
	restoreErr error
	delay      time.Duration

	n        atomic.Int64
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu       sync.Mutex
	restored []string
}

func (f *fakeTool) enter() func() {
	cur := f.inFlight.Add(1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeTool) RunBackup(_ context.Context, kind models.BackupKind, _ string) (string, int64, error) {
	defer f.enter()()
	time.Sleep(f.delay)
	if f.backupErr != nil {
		return "", 0, f.backupErr
	}
	p := filepath.Join(f.dir, fmt.Sprintf("backup_%s_%d.sqlite", strings.ToLower(string(kind)), f.n.Add(1)))
	if err := afero.WriteFile(f.fs, p, []byte(fakeDump), 0o640); err != nil {
		return "", 0, err
	}
	return p, int64(len(fakeDump)), nil
}

func (f *fakeTool) RunRestore(_ context.Context, filePath string) error {
	defer f.enter()()
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.mu.Lock()
	f.restored = append(f.restored, filePath)
	f.mu.Unlock()
	return nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "backup.sqlite")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestManager(t *testing.T, cfg config.BackupConfig) (*Manager, *fakeTool, afero.Fs) {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = "/backups"
	}
	fs := afero.NewMemMapFs()
	tool := &fakeTool{fs: fs, dir: cfg.Dir}
	return NewManager(cfg, openTestDB(t), tool, fs), tool, fs
}

func TestCreateBackup_Success(t *testing.T) {
	m, _, _ := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	rec, err := m.CreateBackup(ctx, models.KindManual, "  pre-migration ", nil)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if rec.Status != models.StatusSuccess {
		t.Fatalf("status = %s, log = %q", rec.Status, rec.Log)
	}
	if rec.FileSize != int64(len(fakeDump)) {
		t.Errorf("size = %d, want %d", rec.FileSize, len(fakeDump))
	}
	if rec.CompletedAt == nil || rec.CompletedAt.Before(rec.CreatedAt) {
		t.Errorf("completed_at = %v, created_at = %v", rec.CompletedAt, rec.CreatedAt)
	}
	if rec.Comment != "pre-migration" {
		t.Errorf("comment = %q", rec.Comment)
	}
	if rec.FileName != "backup_manual_1.sqlite" {
		t.Errorf("file name = %q", rec.FileName)
	}

	stored, err := m.GetBackup(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.StatusSuccess || stored.CompletedAt == nil || stored.FilePath != rec.FilePath {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCreateBackup_ToolFailureIsRecorded(t *testing.T) {
	m, tool, _ := newTestManager(t, config.BackupConfig{})
	tool.backupErr = errors.New("disk full")

	rec, err := m.CreateBackup(context.Background(), models.KindAutomatic, "", nil)
	if err != nil {
		t.Fatalf("tool error leaked to caller: %v", err)
	}
	if rec.Status != models.StatusFailed || rec.CompletedAt == nil {
		t.Fatalf("record = %+v", rec)
	}
	if !strings.Contains(rec.Log, "disk full") {
		t.Errorf("log = %q", rec.Log)
	}
}

func TestCreateBackup_InvalidKind(t *testing.T) {
	m, _, _ := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	_, err := m.CreateBackup(ctx, "WEEKLY", "", nil)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	list, err := m.ListBackups(ctx, ListOptions{})
	if err != nil || len(list) != 0 {
		t.Errorf("records after invalid kind = %d (%v)", len(list), err)
	}
}

func TestCreateBackup_Serialized(t *testing.T) {
	m, tool, _ := newTestManager(t, config.BackupConfig{})
	tool.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := m.CreateBackup(context.Background(), models.KindManual, "", nil)
			if err == nil && rec.Status != models.StatusSuccess {
				err = fmt.Errorf("status %s", rec.Status)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}

	if got := tool.maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent tool runs = %d, want 1", got)
	}
	list, _ := m.ListBackups(context.Background(), ListOptions{})
	if len(list) != 4 {
		t.Errorf("records = %d, want 4", len(list))
	}
}

func TestRestoreBackup(t *testing.T) {
	m, tool, fs := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	ok, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	tool.backupErr = errors.New("boom")
	failed, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	tool.backupErr = nil

	t.Run("unknown backup", func(t *testing.T) {
		if _, err := m.RestoreBackup(ctx, 999, nil); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("failed backup is not available", func(t *testing.T) {
		if _, err := m.RestoreBackup(ctx, failed.ID, nil); !errors.Is(err, models.ErrNotAvailable) {
			t.Errorf("err = %v, want ErrNotAvailable", err)
		}
		restores, _ := m.ListRestores(ctx, failed.ID)
		if len(restores) != 0 {
			t.Errorf("restore records = %d, want 0", len(restores))
		}
	})

	t.Run("success", func(t *testing.T) {
		rec, err := m.RestoreBackup(ctx, ok.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Status != models.StatusSuccess || rec.CompletedAt == nil {
			t.Errorf("restore = %+v", rec)
		}
		if len(tool.restored) != 1 || tool.restored[0] != ok.FilePath {
			t.Errorf("restored = %v", tool.restored)
		}
	})

	t.Run("tool failure is recorded", func(t *testing.T) {
		tool.restoreErr = errors.New("corrupt dump")
		defer func() { tool.restoreErr = nil }()
		rec, err := m.RestoreBackup(ctx, ok.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Status != models.StatusFailed || !strings.Contains(rec.Log, "corrupt dump") {
			t.Errorf("restore = %+v", rec)
		}
	})

	t.Run("missing file fails the restore", func(t *testing.T) {
		if err := fs.Remove(ok.FilePath); err != nil {
			t.Fatal(err)
		}
		rec, err := m.RestoreBackup(ctx, ok.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Status != models.StatusFailed || !strings.Contains(rec.Log, models.ErrFileMissing.Error()) {
			t.Errorf("restore = %+v", rec)
		}
	})

	restores, err := m.ListRestores(ctx, ok.ID)
	if err != nil || len(restores) != 3 {
		t.Fatalf("ListRestores = %d, %v", len(restores), err)
	}
}

func TestDownloadBackup(t *testing.T) {
	m, tool, fs := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	rec, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	rc, got, err := m.DownloadBackup(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != fakeDump || got.ID != rec.ID {
		t.Errorf("download = %q, record %d", data, got.ID)
	}

	// Out-of-band deletion is surfaced, not repaired.
	if err := fs.Remove(rec.FilePath); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.DownloadBackup(ctx, rec.ID); !errors.Is(err, models.ErrFileMissing) {
		t.Errorf("err = %v, want ErrFileMissing", err)
	}
	after, _ := m.GetBackup(ctx, rec.ID)
	if after.Status != models.StatusSuccess {
		t.Errorf("status changed to %s", after.Status)
	}

	tool.backupErr = errors.New("boom")
	failed, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	if _, _, err := m.DownloadBackup(ctx, failed.ID); !errors.Is(err, models.ErrNotAvailable) {
		t.Errorf("err = %v, want ErrNotAvailable", err)
	}
}

func TestDeleteBackup(t *testing.T) {
	m, _, fs := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	rec, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	if _, err := m.RestoreBackup(ctx, rec.ID, nil); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteBackup(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, rec.FilePath); ok {
		t.Error("backup file still present")
	}
	if _, err := m.GetBackup(ctx, rec.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	var n int
	if err := m.store.db.QueryRow(`SELECT COUNT(*) FROM restore_history`).Scan(&n); err != nil || n != 0 {
		t.Errorf("restore rows = %d (%v), want cascade", n, err)
	}

	// A record whose file is already gone is still deletable.
	rec2, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
	_ = fs.Remove(rec2.FilePath)
	if err := m.DeleteBackup(ctx, rec2.ID); err != nil {
		t.Errorf("delete without file: %v", err)
	}
	if err := m.DeleteBackup(ctx, rec2.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestListBackupsAndStats(t *testing.T) {
	m, tool, _ := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.CreateBackup(ctx, models.KindManual, "", nil); err != nil {
			t.Fatal(err)
		}
	}
	tool.backupErr = errors.New("boom")
	if _, err := m.CreateBackup(ctx, models.KindScheduled, "", nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"all", ListOptions{}, 4},
		{"success", ListOptions{Status: models.StatusSuccess}, 3},
		{"scheduled", ListOptions{Kind: models.KindScheduled}, 1},
		{"limit", ListOptions{Limit: 2}, 2},
		{"offset", ListOptions{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := m.ListBackups(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want {
				t.Errorf("len = %d, want %d", len(list), tt.want)
			}
		})
	}

	if _, err := m.ListBackups(ctx, ListOptions{Status: "DONE"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("bad status err = %v", err)
	}

	list, _ := m.ListBackups(ctx, ListOptions{})
	if list[0].ID < list[len(list)-1].ID {
		t.Error("list is not newest first")
	}

	st, err := m.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 4 || st.Success != 3 || st.Failed != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.TotalSize != int64(3*len(fakeDump)) || st.TotalSizeHuman != "51.00 octets" {
		t.Errorf("size = %d %q", st.TotalSize, st.TotalSizeHuman)
	}
	if st.LastBackup == nil || st.LastBackup.Status != models.StatusSuccess {
		t.Errorf("last backup = %+v", st.LastBackup)
	}
}

func TestApplyRetention(t *testing.T) {
	m, tool, fs := newTestManager(t, config.BackupConfig{MaxBackups: 2})
	ctx := context.Background()

	var recs []*models.BackupRecord
	for i := 0; i < 4; i++ {
		rec, _ := m.CreateBackup(ctx, models.KindManual, "", nil)
		recs = append(recs, rec)
	}
	tool.backupErr = errors.New("boom")
	failed, _ := m.CreateBackup(ctx, models.KindManual, "", nil)

	deleted, err := m.ApplyRetention(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	for i, rec := range recs {
		_, err := m.GetBackup(ctx, rec.ID)
		kept := i >= 2
		if kept && err != nil {
			t.Errorf("backup %d removed: %v", i, err)
		}
		if !kept {
			if !errors.Is(err, models.ErrNotFound) {
				t.Errorf("backup %d kept", i)
			}
			if ok, _ := afero.Exists(fs, rec.FilePath); ok {
				t.Errorf("file of backup %d kept", i)
			}
		}
	}
	if _, err := m.GetBackup(ctx, failed.ID); err != nil {
		t.Errorf("failed record pruned: %v", err)
	}

	// MaxBackups 0 disables retention.
	m.cfg.MaxBackups = 0
	if n, err := m.ApplyRetention(ctx); n != 0 || err != nil {
		t.Errorf("disabled retention = %d, %v", n, err)
	}
}

// statFailFs reports every Stat as a permission error.
type statFailFs struct {
	afero.Fs
}

func (statFailFs) Stat(name string) (os.FileInfo, error) {
	return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
}

func TestRestoreBackup_StatErrorIsNotFileMissing(t *testing.T) {
	m, _, fs := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	b, err := m.CreateBackup(ctx, models.KindManual, "", nil)
	if err != nil || b.Status != models.StatusSuccess {
		t.Fatalf("CreateBackup = %+v, %v", b, err)
	}

	m.fs = statFailFs{Fs: fs}
	rec, err := m.RestoreBackup(ctx, b.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.StatusFailed {
		t.Fatalf("status = %s, want FAILED", rec.Status)
	}
	if strings.Contains(rec.Log, models.ErrFileMissing.Error()) {
		t.Errorf("permission error recorded as missing file: %q", rec.Log)
	}
	if !strings.Contains(rec.Log, os.ErrPermission.Error()) {
		t.Errorf("log = %q, want the stat error", rec.Log)
	}
}

func TestFinishRestore_OnlyOnce(t *testing.T) {
	m, _, _ := newTestManager(t, config.BackupConfig{})
	ctx := context.Background()

	b, err := m.CreateBackup(ctx, models.KindManual, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := &models.RestoreRecord{BackupID: b.ID, RestoredAt: time.Now().UTC(), Status: models.StatusInProgress}
	if err := m.store.insertRestore(ctx, rec); err != nil {
		t.Fatal(err)
	}

	done := time.Now().UTC()
	rec.Status, rec.CompletedAt, rec.Log = models.StatusSuccess, &done, "ok"
	if err := m.store.finishRestore(ctx, rec); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	rec.Status, rec.Log = models.StatusFailed, "late failure"
	if err := m.store.finishRestore(ctx, rec); err == nil {
		t.Fatal("second finalize succeeded")
	}

	restores, err := m.ListRestores(ctx, b.ID)
	if err != nil || len(restores) != 1 {
		t.Fatalf("ListRestores = %d, %v", len(restores), err)
	}
	if restores[0].Status != models.StatusSuccess || restores[0].Log != "ok" {
		t.Errorf("record overwritten: %+v", restores[0])
	}
}
