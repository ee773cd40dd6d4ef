// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package establishment stores formal EFTP establishments and non-formal
// structures. Both reference the location registry; those references are
// what protect a location from deletion.
package establishment

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

const (
	tableFormal    = "etablissements_formels"
	tableNonFormal = "structures_non_formelles"
	tableFunding   = "structure_funding_sources"

	defaultListLimit = 100
	maxListLimit     = 1000
)

var formalColumns = []string{
	"id", "code", "nom", "statut", "zone", "region_id", "departement_id", "commune_id",
	"quartier_village_id", "adresse", "dre", "ipde", "date_autorisation", "date_ouverture",
	"longitude", "latitude", "type_etablissement", "cycle_base_1", "cycle_base_2",
	"cycle_moyen_1", "cycle_moyen_2", "regime", "created_at", "updated_at",
}

var nonFormalColumns = []string{
	"id", "code", "nom", "sigle", "statut", "zone", "region_id", "departement_id", "commune_id",
	"quartier_village_id", "adresse", "type_structure", "autre_type_precision", "regime",
	"delivre_attestation", "type_accompagnement", "formation_payante", "mode_paiement",
	"acces_internet", "date_autorisation", "date_ouverture", "longitude", "latitude",
	"a_electricite", "a_point_eau", "a_latrines", "nombre_latrines", "created_at", "updated_at",
}

// ListOptions filters establishment listings.
type ListOptions struct {
	RegionID  int64
	CommuneID int64
	Limit     int
	Offset    int
}

func (o ListOptions) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if o.RegionID > 0 {
		b = b.Where(sq.Eq{"region_id": o.RegionID})
	}
	if o.CommuneID > 0 {
		b = b.Where(sq.Eq{"commune_id": o.CommuneID})
	}
	limit := o.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	b = b.Limit(uint64(limit))
	if o.Offset > 0 {
		b = b.Offset(uint64(o.Offset))
	}
	return b.OrderBy("nom ASC", "id ASC")
}

// Store persists establishments.
type Store struct {
	db      *sql.DB
	now     func() time.Time
	records *Records
}

// NewStore creates a store on db.
func NewStore(db *sql.DB) *Store {
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	s.records = newRecords(db, func() time.Time { return s.now() })
	return s
}

// Records returns the per-establishment record sets.
func (s *Store) Records() *Records { return s.records }

// CreateFormal validates and inserts e, filling ID and timestamps.
func (s *Store) CreateFormal(ctx context.Context, e *models.EtablissementFormel) error {
	if err := validateFormal(e); err != nil {
		return err
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkLocations(ctx, tx, e.LocationRefs); err != nil {
			return err
		}

		now := s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		query, args, err := database.Builder.Insert(tableFormal).
			Columns(formalColumns[1:]...).
			Values(append(formalValues(e), now, now)...).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return translateWriteError(err, e.Code)
		}
		e.ID, err = res.LastInsertId()
		return err
	})
}

// GetFormal returns the formal establishment id.
func (s *Store) GetFormal(ctx context.Context, id int64) (*models.EtablissementFormel, error) {
	query, args, err := database.Builder.Select(formalColumns...).From(tableFormal).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e, err := scanFormal(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("etablissement %d: %w", id, models.ErrNotFound)
	}
	return e, err
}

// ListFormal lists formal establishments by name.
func (s *Store) ListFormal(ctx context.Context, opts ListOptions) ([]*models.EtablissementFormel, error) {
	query, args, err := opts.apply(database.Builder.Select(formalColumns...).From(tableFormal)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list etablissements: %w", err)
	}
	defer rows.Close()

	out := make([]*models.EtablissementFormel, 0)
	for rows.Next() {
		e, err := scanFormal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteFormal removes the formal establishment id.
func (s *Store) DeleteFormal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, tableFormal, id)
}

// UpdateFormal replaces every editable field of the formal establishment
// id with e. Location references are re-checked.
func (s *Store) UpdateFormal(ctx context.Context, id int64, e *models.EtablissementFormel) error {
	e.ID = id
	if err := validateFormal(e); err != nil {
		return err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkLocations(ctx, tx, e.LocationRefs); err != nil {
			return err
		}
		return s.updateRow(ctx, tx, tableFormal, id, editable(formalColumns), formalValues(e), e.Code)
	})
	if err != nil {
		return err
	}

	fresh, err := s.GetFormal(ctx, id)
	if err != nil {
		return err
	}
	*e = *fresh
	return nil
}

// CreateNonFormal validates and inserts st together with its funding sources.
func (s *Store) CreateNonFormal(ctx context.Context, st *models.StructureNonFormelle) error {
	if err := validateNonFormal(st); err != nil {
		return err
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkLocations(ctx, tx, st.LocationRefs); err != nil {
			return err
		}

		now := s.now()
		st.CreatedAt, st.UpdatedAt = now, now
		query, args, err := database.Builder.Insert(tableNonFormal).
			Columns(nonFormalColumns[1:]...).
			Values(append(nonFormalValues(st), now, now)...).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return translateWriteError(err, st.Code)
		}
		if st.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		return replaceFunding(ctx, tx, st.ID, st.FundingSources)
	})
}

// GetNonFormal returns the non-formal structure id with its funding sources.
func (s *Store) GetNonFormal(ctx context.Context, id int64) (*models.StructureNonFormelle, error) {
	query, args, err := database.Builder.Select(nonFormalColumns...).From(tableNonFormal).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	st, err := scanNonFormal(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("structure %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadFunding(ctx, []*models.StructureNonFormelle{st}); err != nil {
		return nil, err
	}
	return st, nil
}

// ListNonFormal lists non-formal structures by name.
func (s *Store) ListNonFormal(ctx context.Context, opts ListOptions) ([]*models.StructureNonFormelle, error) {
	query, args, err := opts.apply(database.Builder.Select(nonFormalColumns...).From(tableNonFormal)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list structures: %w", err)
	}
	out := make([]*models.StructureNonFormelle, 0)
	for rows.Next() {
		st, err := scanNonFormal(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.loadFunding(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNonFormal replaces every editable field of the structure id with st,
// including its funding sources. Location references are re-checked.
func (s *Store) UpdateNonFormal(ctx context.Context, id int64, st *models.StructureNonFormelle) error {
	st.ID = id
	if err := validateNonFormal(st); err != nil {
		return err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := checkLocations(ctx, tx, st.LocationRefs); err != nil {
			return err
		}
		if err := s.updateRow(ctx, tx, tableNonFormal, id, editable(nonFormalColumns), nonFormalValues(st), st.Code); err != nil {
			return err
		}
		return replaceFunding(ctx, tx, id, st.FundingSources)
	})
	if err != nil {
		return err
	}

	fresh, err := s.GetNonFormal(ctx, id)
	if err != nil {
		return err
	}
	*st = *fresh
	return nil
}

// DeleteNonFormal removes the structure id; funding rows cascade.
func (s *Store) DeleteNonFormal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, tableNonFormal, id)
}

// updateRow sets cols to vals on row id and bumps updated_at.
func (s *Store) updateRow(ctx context.Context, q database.Querier, table string, id int64, cols []string, vals []interface{}, code string) error {
	set := make(map[string]interface{}, len(cols)+1)
	for i, col := range cols {
		set[col] = vals[i]
	}
	set["updated_at"] = s.now()

	query, args, err := database.Builder.Update(table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return translateWriteError(err, code)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, models.ErrNotFound)
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	query, args, err := database.Builder.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, models.ErrNotFound)
	}
	return nil
}

func replaceFunding(ctx context.Context, q database.Querier, id int64, sources models.EnumSet[models.FundingSource]) error {
	query, args, err := database.Builder.Delete(tableFunding).Where(sq.Eq{"structure_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear funding sources: %w", err)
	}
	if sources.Len() == 0 {
		return nil
	}

	ins := database.Builder.Insert(tableFunding).Columns("structure_id", "source")
	for _, src := range sources {
		ins = ins.Values(id, string(src))
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert funding sources: %w", err)
	}
	return nil
}

func (s *Store) loadFunding(ctx context.Context, structures []*models.StructureNonFormelle) error {
	if len(structures) == 0 {
		return nil
	}
	byID := make(map[int64]*models.StructureNonFormelle, len(structures))
	ids := make([]int64, 0, len(structures))
	for _, st := range structures {
		byID[st.ID] = st
		ids = append(ids, st.ID)
		st.FundingSources = models.EnumSet[models.FundingSource]{}
	}

	query, args, err := database.Builder.Select("structure_id", "source").From(tableFunding).
		Where(sq.Eq{"structure_id": ids}).OrderBy("structure_id", "source").ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load funding sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			src models.FundingSource
		)
		if err := rows.Scan(&id, &src); err != nil {
			return fmt.Errorf("scan funding source: %w", err)
		}
		if st := byID[id]; st != nil {
			st.FundingSources = append(st.FundingSources, src)
		}
	}
	return rows.Err()
}

// editable drops id and the two timestamps from a column list.
func editable(columns []string) []string {
	return columns[1 : len(columns)-2]
}

// formalValues lines up with editable(formalColumns).
func formalValues(e *models.EtablissementFormel) []interface{} {
	return []interface{}{
		e.Code, e.Name, string(e.Statut), string(e.Zone), e.RegionID, e.DepartmentID, e.CommuneID,
		e.QuarterVillageID, e.Address, e.DRE, e.IPDE, e.DateAutorisation, e.DateOuverture,
		e.Longitude, e.Latitude, e.Type, e.CycleBase1, e.CycleBase2,
		e.CycleMoyen1, e.CycleMoyen2, string(e.Regime),
	}
}

// nonFormalValues lines up with editable(nonFormalColumns).
func nonFormalValues(st *models.StructureNonFormelle) []interface{} {
	return []interface{}{
		st.Code, st.Name, st.Sigle, string(st.Statut), string(st.Zone),
		st.RegionID, st.DepartmentID, st.CommuneID, st.QuarterVillageID,
		st.Address, st.Type, st.AutreTypePrecision, string(st.Regime),
		st.DelivreAttestation, st.SupportTypes, st.FormationPayante, st.PaymentModes,
		st.InternetAccess, st.DateAutorisation, st.DateOuverture, st.Longitude, st.Latitude,
		st.HasElectricity, st.HasWaterPoint, st.HasLatrines, st.LatrineCount,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFormal(row scanner) (*models.EtablissementFormel, error) {
	e := &models.EtablissementFormel{}
	err := row.Scan(
		&e.ID, &e.Code, &e.Name, &e.Statut, &e.Zone, &e.RegionID, &e.DepartmentID, &e.CommuneID,
		&e.QuarterVillageID, &e.Address, &e.DRE, &e.IPDE, &e.DateAutorisation, &e.DateOuverture,
		&e.Longitude, &e.Latitude, &e.Type, &e.CycleBase1, &e.CycleBase2,
		&e.CycleMoyen1, &e.CycleMoyen2, &e.Regime, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanNonFormal(row scanner) (*models.StructureNonFormelle, error) {
	st := &models.StructureNonFormelle{}
	err := row.Scan(
		&st.ID, &st.Code, &st.Name, &st.Sigle, &st.Statut, &st.Zone,
		&st.RegionID, &st.DepartmentID, &st.CommuneID, &st.QuarterVillageID,
		&st.Address, &st.Type, &st.AutreTypePrecision, &st.Regime,
		&st.DelivreAttestation, &st.SupportTypes, &st.FormationPayante, &st.PaymentModes,
		&st.InternetAccess, &st.DateAutorisation, &st.DateOuverture, &st.Longitude, &st.Latitude,
		&st.HasElectricity, &st.HasWaterPoint, &st.HasLatrines, &st.LatrineCount, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func translateWriteError(err error, code string) error {
	switch {
	case database.IsUniqueViolation(err):
		return models.NewValidationError("code", "code %q is already used", code)
	case database.IsForeignKeyViolation(err):
		return models.NewValidationError("location", "referenced location does not exist")
	}
	return fmt.Errorf("write %s: %w", code, err)
}
