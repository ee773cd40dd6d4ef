// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package locimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// Column names understood by the importer.
const (
	ColumnCode = "code"
	ColumnName = "nom"
	ColumnType = "type"
)

// Stats describes a committed import run.
type Stats struct {
	Level     models.Level `json:"level"`
	Rows      int          `json:"rows"`
	Created   int          `json:"created"`
	Updated   int          `json:"updated"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
}

// Duration returns the wall time of the run.
func (s *Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Importer loads a Table into the location registry.
type Importer struct {
	registry *location.Registry
}

// NewImporter creates an importer writing through registry.
func NewImporter(registry *location.Registry) *Importer {
	return &Importer{registry: registry}
}

// RequiredColumns returns the header columns level needs.
func RequiredColumns(level models.Level) []string {
	cols := []string{ColumnCode, ColumnName}
	if pc := level.ImportParentColumn(); pc != "" {
		cols = append(cols, pc)
	}
	return cols
}

// ImportFile reads path and imports it as level.
func (i *Importer) ImportFile(ctx context.Context, level models.Level, path string) (*Stats, error) {
	table, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, level, table)
}

// Import upserts every row of table as level in one transaction.
func (i *Importer) Import(ctx context.Context, level models.Level, table *Table) (*Stats, error) {
	if !level.Valid() {
		return nil, models.NewValidationError("type", "unknown location type %q", string(level))
	}
	if missing := missingColumns(table, level); len(missing) > 0 {
		return nil, models.NewValidationError("columns", "missing required column(s) for %s: %s",
			level, strings.Join(missing, ", "))
	}

	stats := &Stats{Level: level, StartTime: time.Now()}
	err := i.registry.InTx(ctx, func(tx *location.Tx) error {
		for _, row := range table.Rows {
			_, created, err := tx.CreateOrUpdate(ctx, level, toInput(level, row))
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
			stats.Rows++
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}
		return nil
	})
	stats.EndTime = time.Now()
	metrics.RecordImport(string(level), stats.Rows, err)

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("level", string(level)).Msg("Import rolled back")
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("level", string(level)).
		Int("rows", stats.Rows).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Dur("duration", stats.Duration()).
		Msg("Import committed")
	return stats, nil
}

func missingColumns(table *Table, level models.Level) []string {
	var missing []string
	for _, col := range RequiredColumns(level) {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func toInput(level models.Level, row Row) location.Input {
	in := location.Input{
		Code: row.Get(ColumnCode),
		Name: row.Get(ColumnName),
	}
	if pc := level.ImportParentColumn(); pc != "" {
		in.ParentCode = row.Get(pc)
	}
	if level == models.LevelCommune {
		in.Type = models.CommuneType(row.Get(ColumnType))
	}
	return in
}
