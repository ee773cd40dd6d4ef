// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00 octets"},
		{500, "500.00 octets"},
		{1023, "1023.00 octets"},
		{1024, "1.00 Ko"},
		{2048, "2.00 Ko"},
		{1536, "1.50 Ko"},
		{5 * 1024 * 1024, "5.00 Mo"},
		{5368709120, "5.00 Go"},
		{3 * 1024 * 1024 * 1024 * 1024, "3072.00 Go"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}

	b := BackupRecord{FileSize: 2048}
	if b.SizeFormatted() != "2.00 Ko" {
		t.Errorf("SizeFormatted = %q", b.SizeFormatted())
	}
}

func TestBackupStatusAndKind(t *testing.T) {
	if !StatusSuccess.Terminal() || !StatusFailed.Terminal() || StatusInProgress.Terminal() {
		t.Error("Terminal() mismatch")
	}
	if BackupStatus("DONE").Valid() {
		t.Error("DONE should be invalid")
	}
	for _, k := range []BackupKind{KindManual, KindAutomatic, KindScheduled} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if BackupKind("manual").Valid() {
		t.Error("kinds are upper-case")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in         string
		want       Level
		codeLen    int
		importCol  string
		hasParent  bool
		parentWant Level
	}{
		{"regions", LevelRegion, 2, "", false, ""},
		{"departements", LevelDepartment, 3, "region_code", true, LevelRegion},
		{"Communes", LevelCommune, 5, "departement_code", true, LevelDepartment},
		{"quartiers", LevelQuarterVillage, 8, "commune_code", true, LevelCommune},
	}
	for _, tt := range tests {
		lv, ok := ParseLevel(tt.in)
		if !ok || lv != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, lv, ok)
		}
		if lv.CodeLength() != tt.codeLen {
			t.Errorf("%s CodeLength = %d", lv, lv.CodeLength())
		}
		if lv.ImportParentColumn() != tt.importCol {
			t.Errorf("%s ImportParentColumn = %q", lv, lv.ImportParentColumn())
		}
		parent, ok := lv.Parent()
		if ok != tt.hasParent || parent != tt.parentWant {
			t.Errorf("%s Parent = %v, %v", lv, parent, ok)
		}
	}
	if _, ok := ParseLevel("pays"); ok {
		t.Error("unknown level accepted")
	}
	if child, ok := LevelQuarterVillage.Child(); ok {
		t.Errorf("leaf has child %v", child)
	}
}

func TestEnumSet(t *testing.T) {
	set, err := NewEnumSet(FundingPTFs, FundingEtat, FundingPTFs, "fafpa")
	if err != nil {
		t.Fatalf("NewEnumSet: %v", err)
	}
	if fmt.Sprint(set.Strings()) != "[ETAT FAFPA PTFS]" {
		t.Errorf("set = %v", set.Strings())
	}
	if !set.Contains(FundingFAFPA) || set.Contains(FundingEPA) {
		t.Error("Contains mismatch")
	}

	_, err = NewEnumSet[FundingSource]("LOTTERY")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("unknown value err = %v, want ErrValidation", err)
	}

	v, _ := set.Value()
	var scanned EnumSet[FundingSource]
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scanned.Len() != 3 {
		t.Errorf("scanned = %v", scanned)
	}
	if err := scanned.Scan("ETAT,BOGUS"); !errors.Is(err, ErrValidation) {
		t.Errorf("Scan bogus err = %v", err)
	}
	if err := scanned.Scan(nil); err != nil || scanned.Len() != 0 {
		t.Errorf("Scan(nil) = %v, %v", scanned, err)
	}
}

func TestEnumSet_JSON(t *testing.T) {
	var s struct {
		Modes EnumSet[PaymentMode] `json:"modes"`
	}
	if err := json.Unmarshal([]byte(`{"modes":["LIGNE","ESPECES"]}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Modes.Len() != 2 || s.Modes[0] != PaymentCash {
		t.Errorf("modes = %v", s.Modes)
	}
	if err := json.Unmarshal([]byte(`{"modes":["BARTER"]}`), &s); err == nil {
		t.Error("expected error for unknown payment mode")
	}
}

func TestCompletionPercentage_NonFormal(t *testing.T) {
	empty := &StructureNonFormelle{}
	if got := CompletionPercentage(empty); got != 0 {
		t.Errorf("empty = %d, want 0", got)
	}

	now := time.Now()
	full := &StructureNonFormelle{
		Name: "Atelier Soudure", Code: "NF001", Statut: OwnershipPrivate, Zone: CommuneUrban,
		LocationRefs: LocationRefs{RegionID: 1, DepartmentID: 2, CommuneID: 3},
		Type:         "ATELIER", Regime: RegimeDay,
		DateAutorisation: &now, DateOuverture: &now,
		Longitude:      decimal.NewNullDecimal(decimal.RequireFromString("2.1098")),
		Latitude:       decimal.NewNullDecimal(decimal.RequireFromString("13.5137")),
		HasElectricity: true, HasWaterPoint: true, HasLatrines: true,
	}
	if got := CompletionPercentage(full); got != 100 {
		t.Errorf("full = %d, want 100", got)
	}

	// 8 of 16 fields filled.
	half := &StructureNonFormelle{
		Name: "Foyer", Code: "NF002", Statut: OwnershipPublic, Zone: CommuneRural,
		LocationRefs: LocationRefs{RegionID: 1, DepartmentID: 2, CommuneID: 3},
		Type:         "FOYER",
	}
	if got := CompletionPercentage(half); got != 50 {
		t.Errorf("half = %d, want 50", got)
	}
}

func TestCompletionPercentage_TruncatesTowardZero(t *testing.T) {
	// 1 of 14 formal fields filled: 7.14 -> 7.
	e := &EtablissementFormel{Name: "Lycée Technique"}
	if got := CompletionPercentage(e); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestErrors(t *testing.T) {
	verr := NewValidationError("code", "must be %d digits", 2)
	if verr.Error() != "code: must be 2 digits" {
		t.Errorf("Error() = %q", verr.Error())
	}
	wrapped := fmt.Errorf("create region: %w", verr)
	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapped ValidationError should match ErrValidation")
	}
	var target *ValidationError
	if !errors.As(wrapped, &target) || target.Field != "code" {
		t.Error("errors.As failed")
	}

	perr := fmt.Errorf("delete: %w", &ProtectedError{Entity: "Région", Code: "01", References: 2})
	if !errors.Is(perr, ErrReferencedEntityProtected) {
		t.Error("ProtectedError should match ErrReferencedEntityProtected")
	}
}
