// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Command locimport bulk-loads one RENALOC level from a CSV or XLSX file.
//
//	locimport --type regions regions.xlsx
//	locimport --type communes --config /etc/eftp/config.yaml communes.csv
//
// The whole file is imported in one transaction: any bad row aborts the
// run and nothing is written.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/database"
	locimport "github.com/tomtom215/eftp-registry/internal/import"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("locimport", flag.ContinueOnError)
	levelName := fs.String("type", "", "level to import: regions, departements, communes or quartiers")
	dbPath := fs.String("db", "", "database path (overrides DB_PATH)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: locimport --type LEVEL [--db PATH] FILE\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || *levelName == "" {
		fs.Usage()
		return 2
	}
	level, ok := models.ParseLevel(*levelName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown --type %q\n", *levelName)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return 1
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open database")
		return 1
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := location.NewRegistry(db, importObserver())
	stats, err := locimport.NewImporter(registry).ImportFile(ctx, level, fs.Arg(0))
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) || errors.Is(err, locimport.ErrUnsupportedFormat) {
			fmt.Fprintf(os.Stderr, "import rejected, nothing written: %v\n", err)
			return 1
		}
		logging.Error().Err(err).Msg("Import failed")
		return 1
	}

	fmt.Printf("%s: %d rows (%d created, %d updated) in %s\n",
		level.Label(), stats.Rows, stats.Created, stats.Updated, stats.Duration().Round(1e6))
	return 0
}

// importObserver logs and counts every node the import writes, as the
// server does for API mutations.
func importObserver() location.Observer {
	return location.Observers{location.LogObserver{}, location.MetricsObserver{}}
}
