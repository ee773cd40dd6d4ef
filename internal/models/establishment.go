// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ownership is PUBLIC or PRIVE.
type Ownership string

const (
	OwnershipPublic  Ownership = "PUBLIC"
	OwnershipPrivate Ownership = "PRIVE"
)

// Valid reports whether o is a known ownership.
func (o Ownership) Valid() bool { return o == OwnershipPublic || o == OwnershipPrivate }

// Regime is boarding (INTERNAT) or day (EXTERNAT).
type Regime string

const (
	RegimeBoarding Regime = "INTERNAT"
	RegimeDay      Regime = "EXTERNAT"
)

// Valid reports whether r is a known regime.
func (r Regime) Valid() bool { return r == RegimeBoarding || r == RegimeDay }

// EstablishmentKind selects between the two establishment tables.
type EstablishmentKind string

const (
	KindFormal    EstablishmentKind = "formal"
	KindNonFormal EstablishmentKind = "nonformal"
)

// FormalTypes are the allowed EtablissementFormel.Type values.
var FormalTypes = []string{
	"LP", "LT", "LTE", "LA", "CFPT", "CFPP", "CMCAN", "EI", "CET",
	"CFM", "CPJ", "EFAC", "CFPT_AMA", "ENI", "CENTRE_MUSEE", "CFJA", "CFMAA",
}

// NonFormalTypes are the allowed StructureNonFormelle.Type values.
var NonFormalTypes = []string{
	"SFMA", "CFA", "ATELIER", "SAA", "FOYER", "GROUPEMENT",
	"GARAGE", "COOPERATIVE", "CABINET", "PLATEFORME", "AUTRE",
}

// LocationRefs are the registry references shared by both establishment kinds.
// Each is a restricting foreign key: a referenced location cannot be deleted.
type LocationRefs struct {
	RegionID         int64  `json:"region_id" validate:"required,gt=0"`
	DepartmentID     int64  `json:"departement_id" validate:"required,gt=0"`
	CommuneID        int64  `json:"commune_id" validate:"required,gt=0"`
	QuarterVillageID *int64 `json:"quartier_village_id,omitempty"`
}

// EtablissementFormel is a formal EFTP establishment.
type EtablissementFormel struct {
	ID     int64       `json:"id"`
	Code   string      `json:"code" validate:"required,max=10"`
	Name   string      `json:"nom" validate:"required,max=200"`
	Statut Ownership   `json:"statut" validate:"required,oneof=PUBLIC PRIVE"`
	Zone   CommuneType `json:"zone" validate:"required,oneof=URBAINE RURALE"`
	LocationRefs
	Address          string              `json:"adresse" validate:"max=255"`
	DRE              string              `json:"dre" validate:"max=100"`
	IPDE             string              `json:"ipde" validate:"max=100"`
	DateAutorisation *time.Time          `json:"date_autorisation,omitempty"`
	DateOuverture    *time.Time          `json:"date_ouverture,omitempty"`
	Longitude        decimal.NullDecimal `json:"longitude"`
	Latitude         decimal.NullDecimal `json:"latitude"`
	Type             string              `json:"type_etablissement" validate:"required"`
	CycleBase1       bool                `json:"cycle_base_1"`
	CycleBase2       bool                `json:"cycle_base_2"`
	CycleMoyen1      bool                `json:"cycle_moyen_1"`
	CycleMoyen2      bool                `json:"cycle_moyen_2"`
	Regime           Regime              `json:"regime" validate:"required,oneof=INTERNAT EXTERNAT"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// CompletionFields returns the tracked fields for CompletionPercentage.
func (e *EtablissementFormel) CompletionFields() []interface{} {
	return []interface{}{
		e.Name, e.Code, string(e.Statut), string(e.Zone),
		e.RegionID, e.DepartmentID, e.CommuneID, e.QuarterVillageID,
		e.Type, string(e.Regime),
		e.DateAutorisation, e.DateOuverture,
		e.Longitude, e.Latitude,
	}
}

// StructureNonFormelle is a non-formal EFTP structure. QuarterVillageID is optional.
type StructureNonFormelle struct {
	ID     int64       `json:"id"`
	Code   string      `json:"code" validate:"required,max=10"`
	Name   string      `json:"nom" validate:"required,max=200"`
	Sigle  string      `json:"sigle" validate:"max=20"`
	Statut Ownership   `json:"statut" validate:"required,oneof=PUBLIC PRIVE"`
	Zone   CommuneType `json:"zone" validate:"required,oneof=URBAINE RURALE"`
	LocationRefs
	Address            string                    `json:"adresse" validate:"max=255"`
	Type               string                    `json:"type_structure" validate:"required"`
	AutreTypePrecision string                    `json:"autre_type_precision" validate:"max=200"`
	FundingSources     EnumSet[FundingSource]    `json:"source_financement"`
	Regime             Regime                    `json:"regime" validate:"required,oneof=INTERNAT EXTERNAT"`
	DelivreAttestation bool                      `json:"delivre_attestation"`
	SupportTypes       EnumSet[SupportType]      `json:"type_accompagnement"`
	FormationPayante   bool                      `json:"formation_payante"`
	PaymentModes       EnumSet[PaymentMode]      `json:"mode_paiement"`
	InternetAccess     EnumSet[InternetAudience] `json:"acces_internet"`
	DateAutorisation   *time.Time                `json:"date_autorisation,omitempty"`
	DateOuverture      *time.Time                `json:"date_ouverture,omitempty"`
	Longitude          decimal.NullDecimal       `json:"longitude"`
	Latitude           decimal.NullDecimal       `json:"latitude"`
	HasElectricity     bool                      `json:"a_electricite"`
	HasWaterPoint      bool                      `json:"a_point_eau"`
	HasLatrines        bool                      `json:"a_latrines"`
	LatrineCount       int                       `json:"nombre_latrines" validate:"gte=0"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// CompletionFields returns the 16 tracked fields for CompletionPercentage.
func (s *StructureNonFormelle) CompletionFields() []interface{} {
	return []interface{}{
		s.Name, s.Code, string(s.Statut), string(s.Zone),
		s.RegionID, s.DepartmentID, s.CommuneID,
		s.Type, string(s.Regime),
		s.DateAutorisation, s.DateOuverture,
		s.Longitude, s.Latitude,
		s.HasElectricity, s.HasWaterPoint, s.HasLatrines,
	}
}

// Completable is implemented by records exposing a completion percentage.
type Completable interface {
	CompletionFields() []interface{}
}

// CompletionPercentage returns int(filled/total*100), 0 for no fields.
// nil, "", false, 0, nil pointers, invalid decimals and empty sets count as empty.
func CompletionPercentage(c Completable) int {
	fields := c.CompletionFields()
	if len(fields) == 0 {
		return 0
	}
	filled := 0
	for _, f := range fields {
		if isFilled(f) {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

func isFilled(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case *int64:
		return x != nil
	case *time.Time:
		return x != nil
	case decimal.NullDecimal:
		return x.Valid
	case interface{ Len() int }:
		return x.Len() > 0
	default:
		return true
	}
}
