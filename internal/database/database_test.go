// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/eftp-registry/internal/config"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.sqlite")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{
		"users", "backup_history", "restore_history", "regions", "departements",
		"communes", "quartiers_villages", "etablissements_formels",
		"structures_non_formelles", "structure_funding_sources",
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v < 1 {
		t.Errorf("version = %d, want >= 1", v)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.sqlite")
	for i := 0; i < 2; i++ {
		db, err := Open(config.DatabaseConfig{Path: path})
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestForeignKeys_CascadeAndRestrict(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	mustExec := func(q string, args ...interface{}) {
		t.Helper()
		if _, err := db.Exec(q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}

	mustExec(`INSERT INTO regions (id, code, nom, created_at, updated_at) VALUES (1, '01', 'Agadez', ?, ?)`, now, now)
	mustExec(`INSERT INTO departements (id, code, nom, region_id, created_at, updated_at) VALUES (1, '011', 'Arlit', 1, ?, ?)`, now, now)
	mustExec(`INSERT INTO regions (id, code, nom, created_at, updated_at) VALUES (2, '02', 'Diffa', ?, ?)`, now, now)
	mustExec(`INSERT INTO departements (id, code, nom, region_id, created_at, updated_at) VALUES (2, '021', 'Diffa', 2, ?, ?)`, now, now)
	mustExec(`INSERT INTO communes (id, code, nom, departement_id, created_at, updated_at) VALUES (2, '02101', 'Diffa', 2, ?, ?)`, now, now)
	mustExec(`INSERT INTO etablissements_formels (code, nom, statut, zone, region_id, departement_id, commune_id,
		type_etablissement, regime, created_at, updated_at)
		VALUES ('LT01', 'Lycée', 'PUBLIC', 'URBAINE', 2, 2, 2, 'LT', 'EXTERNAT', ?, ?)`, now, now)

	// Cascade.
	mustExec(`DELETE FROM regions WHERE id = 1`)
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM departements WHERE region_id = 1`).Scan(&n); err != nil || n != 0 {
		t.Errorf("cascade left %d departements (err %v)", n, err)
	}

	// Restrict.
	if _, err := db.Exec(`DELETE FROM regions WHERE id = 2`); !IsForeignKeyViolation(err) {
		t.Errorf("delete referenced region err = %v, want FK violation", err)
	}
}

func TestCheckConstraints(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	if _, err := db.Exec(`INSERT INTO regions (code, nom, created_at, updated_at) VALUES ('1A', 'x', ?, ?)`, now, now); err == nil {
		t.Error("non-digit region code accepted")
	}
	if _, err := db.Exec(`INSERT INTO backup_history (file_name, created_at, status) VALUES ('f', ?, 'SUCCESS')`, now); err == nil {
		t.Error("SUCCESS without completed_at accepted")
	}
	if _, err := db.Exec(`INSERT INTO regions (code, nom, created_at, updated_at) VALUES ('01', 'x', ?, ?)`, now, now); err != nil {
		t.Fatal(err)
	}
	_, err := db.Exec(`INSERT INTO regions (code, nom, created_at, updated_at) VALUES ('01', 'y', ?, ?)`, now, now)
	if !IsUniqueViolation(err) {
		t.Errorf("duplicate code err = %v, want unique violation", err)
	}
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO regions (code, nom, created_at, updated_at) VALUES ('03', 'Dosso', ?, ?)`, now, now); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v", err)
	}

	var n int
	_ = db.QueryRow(`SELECT COUNT(*) FROM regions`).Scan(&n)
	if n != 0 {
		t.Errorf("rolled back tx left %d rows", n)
	}

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO regions (code, nom, created_at, updated_at) VALUES ('03', 'Dosso', ?, ?)`, now, now)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx commit: %v", err)
	}
	_ = db.QueryRow(`SELECT COUNT(*) FROM regions`).Scan(&n)
	if n != 1 {
		t.Errorf("committed rows = %d, want 1", n)
	}
}

func TestDSN(t *testing.T) {
	d := dsn("/tmp/x.sqlite", 2*time.Second)
	for _, want := range []string{"foreign_keys%281%29", "busy_timeout%282000%29", "journal_mode%28WAL%29"} {
		if !strings.Contains(d, want) {
			t.Errorf("dsn %q missing %q", d, want)
		}
	}
	if strings.Contains(dsn(":memory:", time.Second), "journal_mode") {
		t.Error("in-memory dsn should not set WAL")
	}
}
