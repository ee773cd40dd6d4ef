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
	"github.com/tomtom215/eftp-registry/internal/validation"
)

func validateFormal(e *models.EtablissementFormel) error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return verr
	}
	if !contains(models.FormalTypes, e.Type) {
		return models.NewValidationError("type_etablissement", "unknown establishment type %q", e.Type)
	}
	if e.QuarterVillageID == nil {
		return models.NewValidationError("quartier_village_id", "quarter/village is required")
	}
	return validateCoordinates(e.Longitude.Valid, e.Latitude.Valid)
}

func validateNonFormal(st *models.StructureNonFormelle) error {
	if verr := validation.ValidateStruct(st); verr != nil {
		return verr
	}
	if !contains(models.NonFormalTypes, st.Type) {
		return models.NewValidationError("type_structure", "unknown structure type %q", st.Type)
	}
	if st.Type == "AUTRE" && st.AutreTypePrecision == "" {
		return models.NewValidationError("autre_type_precision", "required when type_structure is AUTRE")
	}
	if !st.FormationPayante && st.PaymentModes.Len() > 0 {
		return models.NewValidationError("mode_paiement", "only allowed when formation_payante is set")
	}
	if !st.HasLatrines && st.LatrineCount > 0 {
		return models.NewValidationError("nombre_latrines", "must be 0 when a_latrines is false")
	}
	return validateCoordinates(st.Longitude.Valid, st.Latitude.Valid)
}

func validateCoordinates(lonSet, latSet bool) error {
	if lonSet != latSet {
		return models.NewValidationError("longitude", "longitude and latitude must be given together")
	}
	return nil
}

// checkLocations verifies the references form one branch of the hierarchy.
func checkLocations(ctx context.Context, q database.Querier, refs models.LocationRefs) error {
	query, args, err := database.Builder.Select("COUNT(*)").
		From("communes c").
		Join("departements d ON d.id = c.departement_id").
		Where(sq.Eq{"c.id": refs.CommuneID, "d.id": refs.DepartmentID, "d.region_id": refs.RegionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("check locations: %w", err)
	}
	if n == 0 {
		return models.NewValidationError("commune_id", "commune %d is not in departement %d of region %d",
			refs.CommuneID, refs.DepartmentID, refs.RegionID)
	}

	if refs.QuarterVillageID == nil {
		return nil
	}
	query, args, err = database.Builder.Select("COUNT(*)").From("quartiers_villages").
		Where(sq.Eq{"id": *refs.QuarterVillageID, "commune_id": refs.CommuneID}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("check quartier: %w", err)
	}
	if n == 0 {
		return models.NewValidationError("quartier_village_id", "quarter/village %d is not in commune %d",
			*refs.QuarterVillageID, refs.CommuneID)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
