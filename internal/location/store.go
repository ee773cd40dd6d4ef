// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// establishmentTables are the tables whose rows protect locations from deletion.
var establishmentTables = []string{"etablissements_formels", "structures_non_formelles"}

func selectLocations(level models.Level) sq.SelectBuilder {
	cols := []string{"t.id", "t.code", "t.nom", "t.created_at", "t.updated_at"}
	if parent, ok := level.Parent(); ok {
		cols = append(cols, "t."+level.ParentColumn(), "p.code")
		if level == models.LevelCommune {
			cols = append(cols, "t.type_commune")
		}
		return database.Builder.Select(cols...).
			From(level.Table() + " t").
			Join(fmt.Sprintf("%s p ON p.id = t.%s", parent.Table(), level.ParentColumn()))
	}
	return database.Builder.Select(cols...).From(level.Table() + " t")
}

func scanLocation(level models.Level, row interface{ Scan(...interface{}) error }) (*models.Location, error) {
	loc := &models.Location{Level: level}
	dest := []interface{}{&loc.ID, &loc.Code, &loc.Name, &loc.CreatedAt, &loc.UpdatedAt}
	if _, ok := level.Parent(); ok {
		var parentID int64
		dest = append(dest, &parentID, &loc.ParentCode)
		if level == models.LevelCommune {
			dest = append(dest, &loc.Type)
		}
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		loc.ParentID = &parentID
		return loc, nil
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return loc, nil
}

func getByCode(ctx context.Context, q database.Querier, level models.Level, code string) (*models.Location, error) {
	query, args, err := selectLocations(level).Where(sq.Eq{"t.code": code}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	loc, err := scanLocation(level, q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", level.Label(), code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", level, code, err)
	}
	return loc, nil
}

func list(ctx context.Context, q database.Querier, level models.Level, parentID *int64) ([]*models.Location, error) {
	b := selectLocations(level).OrderBy("t.nom ASC", "t.code ASC")
	if parentID != nil && level.ParentColumn() != "" {
		b = b.Where(sq.Eq{"t." + level.ParentColumn(): *parentID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", level, err)
	}
	defer rows.Close()

	out := make([]*models.Location, 0)
	for rows.Next() {
		loc, err := scanLocation(level, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", level, err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func insert(ctx context.Context, q database.Querier, level models.Level, code, name string, parentID int64, typ models.CommuneType, now time.Time) error {
	cols := []string{"code", "nom", "created_at", "updated_at"}
	vals := []interface{}{code, name, now, now}
	if level.ParentColumn() != "" {
		cols = append(cols, level.ParentColumn())
		vals = append(vals, parentID)
	}
	if level == models.LevelCommune {
		cols = append(cols, "type_commune")
		vals = append(vals, string(typ))
	}

	query, args, err := database.Builder.Insert(level.Table()).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s %s: %w", level, code, err)
	}
	return nil
}

func update(ctx context.Context, q database.Querier, level models.Level, id int64, name string, parentID int64, typ models.CommuneType, now time.Time) error {
	b := database.Builder.Update(level.Table()).
		Set("nom", name).
		Set("updated_at", now).
		Where(sq.Eq{"id": id})
	if level.ParentColumn() != "" {
		b = b.Set(level.ParentColumn(), parentID)
	}
	if level == models.LevelCommune {
		b = b.Set("type_commune", string(typ))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s %d: %w", level, id, err)
	}
	return nil
}

func deleteByID(ctx context.Context, q database.Querier, level models.Level, id int64) error {
	query, args, err := database.Builder.Delete(level.Table()).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s %d: %w", level, id, err)
	}
	return nil
}

// referenceFilter matches establishments attached to the node or to any of
// its descendants. QuarterVillage references are cleared on delete, so they
// never protect a node.
func referenceFilter(level models.Level, id int64) (sq.Sqlizer, bool) {
	switch level {
	case models.LevelRegion:
		return sq.Or{
			sq.Eq{"region_id": id},
			sq.Expr("departement_id IN (SELECT id FROM departements WHERE region_id = ?)", id),
			sq.Expr(`commune_id IN (SELECT c.id FROM communes c
				JOIN departements d ON d.id = c.departement_id WHERE d.region_id = ?)`, id),
		}, true
	case models.LevelDepartment:
		return sq.Or{
			sq.Eq{"departement_id": id},
			sq.Expr("commune_id IN (SELECT id FROM communes WHERE departement_id = ?)", id),
		}, true
	case models.LevelCommune:
		return sq.Eq{"commune_id": id}, true
	}
	return nil, false
}

func countReferences(ctx context.Context, q database.Querier, level models.Level, id int64) (int, error) {
	filter, ok := referenceFilter(level, id)
	if !ok {
		return 0, nil
	}

	total := 0
	for _, table := range establishmentTables {
		query, args, err := database.Builder.Select("COUNT(*)").From(table).Where(filter).ToSql()
		if err != nil {
			return 0, fmt.Errorf("build count: %w", err)
		}
		var n int
		if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count %s references: %w", table, err)
		}
		total += n
	}
	return total, nil
}
