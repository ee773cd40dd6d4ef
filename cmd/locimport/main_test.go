// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing type", []string{"regions.csv"}},
		{"unknown type", []string{"--type", "provinces", "regions.csv"}},
		{"unknown flag", []string{"--level", "regions", "regions.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != 2 {
				t.Errorf("run = %d, want 2", code)
			}
		})
	}
}

func TestRun_ImportsFile(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "eftp.sqlite")
	src := filepath.Join(dir, "regions.csv")
	if err := os.WriteFile(src, []byte("code;nom\n01;Agadez\n02;Diffa\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if code := run([]string{"--type", "regions", "--db", dbPath, src}); code != 0 {
		t.Fatalf("run = %d", code)
	}

	bad := filepath.Join(dir, "depts.csv")
	if err := os.WriteFile(bad, []byte("code,nom\n011,Arlit\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{"--type", "departements", "--db", dbPath, bad}); code != 1 {
		t.Errorf("missing parent column run = %d, want 1", code)
	}

	db, err := database.Open(config.DatabaseConfig{Path: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	regions, err := location.NewRegistry(db, nil).ListChildren(context.Background(), models.LevelRegion, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 {
		t.Errorf("regions = %d, want 2", len(regions))
	}
}

func TestImportObserver_LogsEachNode(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevLevel := logging.Logger(), zerolog.GlobalLevel()
	logging.SetLogger(logging.NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		logging.SetLogger(prevLogger)
		zerolog.SetGlobalLevel(prevLevel)
	})

	db, err := database.Open(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "eftp.sqlite")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	registry := location.NewRegistry(db, importObserver())
	ctx := context.Background()
	for _, in := range []location.Input{{Code: "05", Name: "Niamey"}, {Code: "06", Name: "Tahoua"}} {
		if _, _, err := registry.CreateOrUpdate(ctx, models.LevelRegion, in); err != nil {
			t.Fatal(err)
		}
	}

	out := buf.String()
	if got := strings.Count(out, "Location created"); got != 2 {
		t.Errorf("created lines = %d, want 2:\n%s", got, out)
	}
	for _, code := range []string{`"code":"05"`, `"code":"06"`} {
		if !strings.Contains(out, code) {
			t.Errorf("log missing %s", code)
		}
	}
}
