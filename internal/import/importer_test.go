// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package locimport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/models"
)

type countingObserver struct {
	mu    sync.Mutex
	saved int
}

func (o *countingObserver) NodeSaved(context.Context, *models.Location, bool) {
	o.mu.Lock()
	o.saved++
	o.mu.Unlock()
}

func (o *countingObserver) NodeDeleted(context.Context, *models.Location) {}

func setup(t *testing.T) (*Importer, *location.Registry, *countingObserver) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "import.sqlite")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	obs := &countingObserver{}
	reg := location.NewRegistry(db, obs)
	return NewImporter(reg), reg, obs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadRows_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"comma", "code,nom,region_code\n011,Arlit,01\n\n012,Bilma,01\n"},
		{"semicolon with BOM", "\ufeffCode;Nom;Region_Code\n011;Arlit;01\n012;Bilma;01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadRows(writeFile(t, "d.csv", tt.content))
			if err != nil {
				t.Fatalf("ReadRows: %v", err)
			}
			if !table.HasColumn("code") || !table.HasColumn("region_code") {
				t.Errorf("columns = %v", table.Columns)
			}
			if len(table.Rows) != 2 {
				t.Fatalf("rows = %d, want 2 (blank lines skipped)", len(table.Rows))
			}
			if table.Rows[1].Get("nom") != "Bilma" {
				t.Errorf("row 2 nom = %q", table.Rows[1].Get("nom"))
			}
		})
	}
}

func TestReadRows_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communes.xlsx")
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"code", "nom", "departement_code", "type"},
		{"01101", "Arlit", "011", "URBAINE"},
		{"01102", "Iférouane", "011", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = wb.Close()

	table, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[0].Get("type") != "URBAINE" {
		t.Errorf("table = %+v", table)
	}
	if table.Rows[1].Line != 3 {
		t.Errorf("line = %d, want 3", table.Rows[1].Line)
	}
}

func TestReadRows_Unsupported(t *testing.T) {
	if _, err := ReadRows(writeFile(t, "data.json", "{}")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := ReadRows(writeFile(t, "empty.csv", "")); err == nil {
		t.Error("empty file accepted")
	}
}

func TestImport_FullHierarchy(t *testing.T) {
	imp, reg, obs := setup(t)
	ctx := context.Background()

	files := []struct {
		level   models.Level
		content string
		rows    int
	}{
		{models.LevelRegion, "code,nom\n01,Agadez\n02,Diffa\n", 2},
		{models.LevelDepartment, "code,nom,region_code\n011,Arlit,01\n021,Diffa,02\n", 2},
		{models.LevelCommune, "code,nom,departement_code,type\n01101,Arlit,011,URBAINE\n02101,Diffa,021,\n", 2},
		{models.LevelQuarterVillage, "code,nom,commune_code\n01101001,Quartier Nord,01101\n", 1},
	}
	for _, f := range files {
		stats, err := imp.ImportFile(ctx, f.level, writeFile(t, string(f.level)+".csv", f.content))
		if err != nil {
			t.Fatalf("import %s: %v", f.level, err)
		}
		if stats.Rows != f.rows || stats.Created != f.rows {
			t.Errorf("%s stats = %+v", f.level, stats)
		}
	}

	c, err := reg.Get(ctx, models.LevelCommune, "02101")
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != models.CommuneRural {
		t.Errorf("blank type = %q, want RURALE", c.Type)
	}
	if obs.saved != 7 {
		t.Errorf("observer saved = %d, want 7", obs.saved)
	}

	// Re-import updates in place.
	stats, err := imp.ImportFile(ctx, models.LevelRegion, writeFile(t, "r2.csv", "code,nom\n01,AGADEZ\n"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 || stats.Created != 0 {
		t.Errorf("re-import stats = %+v", stats)
	}
}

func TestImport_AllOrNothing(t *testing.T) {
	imp, reg, obs := setup(t)
	ctx := context.Background()
	if _, err := imp.ImportFile(ctx, models.LevelRegion, writeFile(t, "r.csv", "code,nom\n01,Agadez\n")); err != nil {
		t.Fatal(err)
	}
	before := obs.saved

	content := "code,nom,region_code\n011,Arlit,01\n012,Bilma,01\n091,Nulle Part,09\n"
	_, err := imp.ImportFile(ctx, models.LevelDepartment, writeFile(t, "d.csv", content))
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "row 4") {
		t.Errorf("error %q does not name the failing row", err)
	}

	depts, err := reg.ListChildren(ctx, models.LevelDepartment, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(depts) != 0 {
		t.Errorf("rolled back import left %d departements", len(depts))
	}
	if obs.saved != before {
		t.Errorf("rolled back import emitted %d events", obs.saved-before)
	}
}

func TestImport_MissingColumns(t *testing.T) {
	imp, _, _ := setup(t)
	table := &Table{Columns: []string{"code", "nom"}}

	_, err := imp.Import(context.Background(), models.LevelCommune, table)
	if !errors.Is(err, models.ErrValidation) || !strings.Contains(err.Error(), "departement_code") {
		t.Errorf("err = %v", err)
	}
}

func TestRequiredColumns(t *testing.T) {
	tests := []struct {
		level models.Level
		want  string
	}{
		{models.LevelRegion, "code,nom"},
		{models.LevelDepartment, "code,nom,region_code"},
		{models.LevelCommune, "code,nom,departement_code"},
		{models.LevelQuarterVillage, "code,nom,commune_code"},
	}
	for _, tt := range tests {
		if got := strings.Join(RequiredColumns(tt.level), ","); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.level, got, tt.want)
		}
	}
}
