// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package location

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// DefaultSearchLimit is the number of matches returned per level.
const DefaultSearchLimit = 5

// searchLevels are the levels offered by autocompletion.
var searchLevels = []models.Level{models.LevelRegion, models.LevelDepartment, models.LevelCommune}

// Counts holds the number of nodes per level.
type Counts struct {
	Regions      int `json:"regions"`
	Departements int `json:"departements"`
	Communes     int `json:"communes"`
	Quartiers    int `json:"quartiers"`
}

// Counts returns the size of each level.
func (r *Registry) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	dest := map[models.Level]*int{
		models.LevelRegion:         &c.Regions,
		models.LevelDepartment:     &c.Departements,
		models.LevelCommune:        &c.Communes,
		models.LevelQuarterVillage: &c.Quartiers,
	}
	for _, level := range models.Levels {
		query, args, err := database.Builder.Select("COUNT(*)").From(level.Table()).ToSql()
		if err != nil {
			return c, fmt.Errorf("build query: %w", err)
		}
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(dest[level]); err != nil {
			return c, fmt.Errorf("count %s: %w", level, err)
		}
	}
	return c, nil
}

// Search matches term against the name (case-insensitive substring) or the
// code (prefix) of regions, departements and communes, returning up to
// limit nodes per level in that order.
func (r *Registry) Search(ctx context.Context, term string, limit int) ([]*models.Location, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	term = strings.TrimSpace(term)
	escaped := escapeLike(term)
	match := sq.Or{
		sq.Expr(`LOWER(t.nom) LIKE ? ESCAPE '\'`, "%"+strings.ToLower(escaped)+"%"),
		sq.Expr(`t.code LIKE ? ESCAPE '\'`, escaped+"%"),
	}

	out := make([]*models.Location, 0)
	for _, level := range searchLevels {
		query, args, err := selectLocations(level).Where(match).
			OrderBy("t.nom ASC", "t.code ASC").Limit(uint64(limit)).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build query: %w", err)
		}
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", level, err)
		}
		for rows.Next() {
			loc, err := scanLocation(level, rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan %s: %w", level, err)
			}
			out = append(out, loc)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
