// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package establishment

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// FormalSummary totals the learners, tracks and trainers of establishment id.
func (s *Store) FormalSummary(ctx context.Context, id int64) (*models.FormalSummary, error) {
	e, err := s.GetFormal(ctx, id)
	if err != nil {
		return nil, err
	}

	sum := &models.FormalSummary{EstablishmentID: id, CompletionPercentage: models.CompletionPercentage(e)}
	if err := s.aggregate(ctx, "apprenants_formels", "etablissement_id", id,
		"COALESCE(SUM(masculin + feminin), 0), COALESCE(SUM(redoublants_m + redoublants_f), 0)",
		&sum.TotalApprenants, &sum.TotalRedoublants); err != nil {
		return nil, err
	}
	if err := s.aggregate(ctx, "filieres_formelles", "etablissement_id", id, "COUNT(*)", &sum.TotalFilieres); err != nil {
		return nil, err
	}
	if err := s.aggregate(ctx, "formateurs_formels", "etablissement_id", id, "COUNT(*)", &sum.TotalFormateurs); err != nil {
		return nil, err
	}
	return sum, nil
}

// NonFormalSummary totals the apprentices, master craftsmen and trades of
// structure id.
func (s *Store) NonFormalSummary(ctx context.Context, id int64) (*models.NonFormalSummary, error) {
	st, err := s.GetNonFormal(ctx, id)
	if err != nil {
		return nil, err
	}

	sum := &models.NonFormalSummary{StructureID: id, CompletionPercentage: models.CompletionPercentage(st)}
	if err := s.aggregate(ctx, "apprentis_non_formels", "structure_id", id,
		"COALESCE(SUM(masculin + feminin), 0)", &sum.TotalApprentis); err != nil {
		return nil, err
	}
	if err := s.aggregate(ctx, "maitres_artisans", "structure_id", id, "COUNT(*)", &sum.TotalMaitres); err != nil {
		return nil, err
	}
	if err := s.aggregate(ctx, "metiers_non_formels", "structure_id", id,
		"COUNT(*), COALESCE(SUM(promo_1_m + promo_1_f + promo_2_m + promo_2_f + promo_3_m + promo_3_f), 0)",
		&sum.TotalMetiers, &sum.TotalApprentisMetiers); err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *Store) aggregate(ctx context.Context, table, parentCol string, id int64, expr string, dest ...interface{}) error {
	query, args, err := database.Builder.Select(expr).From(table).Where(sq.Eq{parentCol: id}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		return fmt.Errorf("aggregate %s: %w", table, err)
	}
	return nil
}

// Counts holds the number of establishments of each kind.
type Counts struct {
	Formal    int `json:"etablissements_formels"`
	NonFormal int `json:"structures_non_formelles"`
}

// Counts returns the number of formal and non-formal establishments.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, t := range []struct {
		table string
		dest  *int
	}{
		{tableFormal, &c.Formal},
		{tableNonFormal, &c.NonFormal},
	} {
		query, args, err := database.Builder.Select("COUNT(*)").From(t.table).ToSql()
		if err != nil {
			return c, fmt.Errorf("build query: %w", err)
		}
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(t.dest); err != nil {
			return c, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}
