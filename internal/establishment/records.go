// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

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
	"github.com/tomtom215/eftp-registry/internal/validation"
)

// RecordSet stores one kind of record attached to an establishment
// (learners, tracks, trainers, master craftsmen, apprentices, trades).
// Every operation is scoped to the parent: a record is never reachable
// through another establishment's id.
type RecordSet[T any] struct {
	db  *sql.DB
	now func() time.Time

	name        string
	table       string
	parentTable string
	parentCol   string
	columns     []string // editable columns, in values() order
	orderBy     []string

	values func(*T) []interface{}
	// dest returns scan targets for id, parent, columns..., created_at, updated_at.
	dest  func(*T) []interface{}
	check func(*T) error
}

func (rs *RecordSet[T]) selectCols() []string {
	cols := make([]string, 0, len(rs.columns)+4)
	cols = append(cols, "id", rs.parentCol)
	cols = append(cols, rs.columns...)
	return append(cols, "created_at", "updated_at")
}

func (rs *RecordSet[T]) validate(rec *T) error {
	if verr := validation.ValidateStruct(rec); verr != nil {
		return verr
	}
	if rs.check != nil {
		return rs.check(rec)
	}
	return nil
}

func (rs *RecordSet[T]) requireParent(ctx context.Context, q database.Querier, parentID int64) error {
	query, args, err := database.Builder.Select("COUNT(*)").From(rs.parentTable).
		Where(sq.Eq{"id": parentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("check %s %d: %w", rs.parentTable, parentID, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", rs.parentTable, parentID, models.ErrNotFound)
	}
	return nil
}

func (rs *RecordSet[T]) get(ctx context.Context, q database.Querier, parentID, id int64) (*T, error) {
	query, args, err := database.Builder.Select(rs.selectCols()...).From(rs.table).
		Where(sq.Eq{"id": id, rs.parentCol: parentID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rec := new(T)
	err = q.QueryRowContext(ctx, query, args...).Scan(rs.dest(rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", rs.name, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", rs.name, id, err)
	}
	return rec, nil
}

// List returns the records of parentID. An unknown parent is ErrNotFound.
func (rs *RecordSet[T]) List(ctx context.Context, parentID int64) ([]*T, error) {
	if err := rs.requireParent(ctx, rs.db, parentID); err != nil {
		return nil, err
	}
	query, args, err := database.Builder.Select(rs.selectCols()...).From(rs.table).
		Where(sq.Eq{rs.parentCol: parentID}).OrderBy(rs.orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", rs.name, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		rec := new(T)
		if err := rows.Scan(rs.dest(rec)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rs.name, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns record id of parentID.
func (rs *RecordSet[T]) Get(ctx context.Context, parentID, id int64) (*T, error) {
	return rs.get(ctx, rs.db, parentID, id)
}

// Create validates rec and attaches it to parentID. rec is refreshed with
// the stored row.
func (rs *RecordSet[T]) Create(ctx context.Context, parentID int64, rec *T) error {
	if err := rs.validate(rec); err != nil {
		return err
	}
	return database.WithTx(ctx, rs.db, func(tx *sql.Tx) error {
		if err := rs.requireParent(ctx, tx, parentID); err != nil {
			return err
		}

		now := rs.now()
		cols := append([]string{rs.parentCol}, rs.columns...)
		cols = append(cols, "created_at", "updated_at")
		vals := append([]interface{}{parentID}, rs.values(rec)...)
		vals = append(vals, now, now)

		query, args, err := database.Builder.Insert(rs.table).Columns(cols...).Values(vals...).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rs.name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		fresh, err := rs.get(ctx, tx, parentID, id)
		if err != nil {
			return err
		}
		*rec = *fresh
		return nil
	})
}

// Update replaces the editable fields of record id with rec.
func (rs *RecordSet[T]) Update(ctx context.Context, parentID, id int64, rec *T) error {
	if err := rs.validate(rec); err != nil {
		return err
	}
	return database.WithTx(ctx, rs.db, func(tx *sql.Tx) error {
		set := make(map[string]interface{}, len(rs.columns)+1)
		for i, v := range rs.values(rec) {
			set[rs.columns[i]] = v
		}
		set["updated_at"] = rs.now()

		query, args, err := database.Builder.Update(rs.table).SetMap(set).
			Where(sq.Eq{"id": id, rs.parentCol: parentID}).ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update %s %d: %w", rs.name, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%s %d: %w", rs.name, id, models.ErrNotFound)
		}

		fresh, err := rs.get(ctx, tx, parentID, id)
		if err != nil {
			return err
		}
		*rec = *fresh
		return nil
	})
}

// Delete removes record id of parentID.
func (rs *RecordSet[T]) Delete(ctx context.Context, parentID, id int64) error {
	query, args, err := database.Builder.Delete(rs.table).
		Where(sq.Eq{"id": id, rs.parentCol: parentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := rs.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", rs.name, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", rs.name, id, models.ErrNotFound)
	}
	return nil
}

// Records groups the record sets of both establishment kinds.
type Records struct {
	Apprenants *RecordSet[models.ApprenantFormel]
	Filieres   *RecordSet[models.FiliereFormel]
	Formateurs *RecordSet[models.FormateurFormel]

	Maitres   *RecordSet[models.MaitreArtisan]
	Apprentis *RecordSet[models.ApprentiNonFormel]
	Metiers   *RecordSet[models.MetierNonFormel]
}

func newRecords(db *sql.DB, now func() time.Time) *Records {
	return &Records{
		Apprenants: &RecordSet[models.ApprenantFormel]{
			db: db, now: now, name: "apprenant",
			table: "apprenants_formels", parentTable: tableFormal, parentCol: "etablissement_id",
			columns: []string{"cycle", "annee_etude", "masculin", "feminin", "redoublants_m", "redoublants_f"},
			orderBy: []string{"cycle", "annee_etude", "id"},
			values: func(a *models.ApprenantFormel) []interface{} {
				return []interface{}{a.Cycle, a.AnneeEtude, a.Masculin, a.Feminin, a.RedoublantsM, a.RedoublantsF}
			},
			dest: func(a *models.ApprenantFormel) []interface{} {
				return []interface{}{&a.ID, &a.EstablishmentID, &a.Cycle, &a.AnneeEtude,
					&a.Masculin, &a.Feminin, &a.RedoublantsM, &a.RedoublantsF, &a.CreatedAt, &a.UpdatedAt}
			},
			check: func(a *models.ApprenantFormel) error {
				if a.RedoublantsM > a.Masculin || a.RedoublantsF > a.Feminin {
					return models.NewValidationError("redoublants", "repeaters cannot exceed enrolment")
				}
				return nil
			},
		},
		Filieres: &RecordSet[models.FiliereFormel]{
			db: db, now: now, name: "filiere",
			table: "filieres_formelles", parentTable: tableFormal, parentCol: "etablissement_id",
			columns: []string{"secteur", "nom_filiere", "diplome_prepare", "cycle", "duree_formation",
				"nb_groupes_pedagogiques", "heures_pratique_hebdo", "stage_obligatoire", "effectif_m", "effectif_f"},
			orderBy: []string{"secteur", "nom_filiere", "id"},
			values: func(f *models.FiliereFormel) []interface{} {
				return []interface{}{f.Secteur, f.NomFiliere, f.DiplomePrepare, f.Cycle, f.DureeFormation,
					f.NbGroupesPedagogiques, f.HeuresPratiqueHebdo, f.StageObligatoire, f.EffectifM, f.EffectifF}
			},
			dest: func(f *models.FiliereFormel) []interface{} {
				return []interface{}{&f.ID, &f.EstablishmentID, &f.Secteur, &f.NomFiliere, &f.DiplomePrepare,
					&f.Cycle, &f.DureeFormation, &f.NbGroupesPedagogiques, &f.HeuresPratiqueHebdo,
					&f.StageObligatoire, &f.EffectifM, &f.EffectifF, &f.CreatedAt, &f.UpdatedAt}
			},
		},
		Formateurs: &RecordSet[models.FormateurFormel]{
			db: db, now: now, name: "formateur",
			table: "formateurs_formels", parentTable: tableFormal, parentCol: "etablissement_id",
			columns: []string{"statut", "nationalite", "nom_prenom", "sexe", "date_naissance",
				"annee_recrutement", "diplome_academique", "diplome_professionnel", "disciplines_enseignees",
				"volume_horaire_hebdo", "a_recu_renforcement", "a_ete_inspecte"},
			orderBy: []string{"nom_prenom", "id"},
			values: func(f *models.FormateurFormel) []interface{} {
				return []interface{}{f.Statut, f.Nationalite, f.NomPrenom, f.Sexe, f.DateNaissance,
					f.AnneeRecrutement, f.DiplomeAcademique, f.DiplomeProfessionnel, f.DisciplinesEnseignees,
					f.VolumeHoraireHebdo, f.ARecuRenforcement, f.AEteInspecte}
			},
			dest: func(f *models.FormateurFormel) []interface{} {
				return []interface{}{&f.ID, &f.EstablishmentID, &f.Statut, &f.Nationalite, &f.NomPrenom,
					&f.Sexe, &f.DateNaissance, &f.AnneeRecrutement, &f.DiplomeAcademique,
					&f.DiplomeProfessionnel, &f.DisciplinesEnseignees, &f.VolumeHoraireHebdo,
					&f.ARecuRenforcement, &f.AEteInspecte, &f.CreatedAt, &f.UpdatedAt}
			},
			check: func(f *models.FormateurFormel) error {
				if f.DateNaissance.IsZero() {
					return models.NewValidationError("date_naissance", "date of birth is required")
				}
				return nil
			},
		},

		Maitres: &RecordSet[models.MaitreArtisan]{
			db: db, now: now, name: "maitre artisan",
			table: "maitres_artisans", parentTable: tableNonFormal, parentCol: "structure_id",
			columns: []string{"nom_prenom", "sexe", "grade", "formation_initiale", "nb_formation_continue",
				"qualification_certifiee", "dernier_certificat", "niveau_certificat", "structure_certifiante",
				"annee_certification", "nationalite", "a_recu_suivi"},
			orderBy: []string{"nom_prenom", "id"},
			values: func(m *models.MaitreArtisan) []interface{} {
				if m.Nationalite == "" {
					m.Nationalite = "NIGERIEN"
				}
				return []interface{}{m.NomPrenom, m.Sexe, m.Grade, m.FormationInitiale, m.NbFormationContinue,
					m.QualificationCertifiee, m.DernierCertificat, m.NiveauCertificat, m.StructureCertifiante,
					m.AnneeCertification, m.Nationalite, m.ARecuSuivi}
			},
			dest: func(m *models.MaitreArtisan) []interface{} {
				return []interface{}{&m.ID, &m.StructureID, &m.NomPrenom, &m.Sexe, &m.Grade,
					&m.FormationInitiale, &m.NbFormationContinue, &m.QualificationCertifiee,
					&m.DernierCertificat, &m.NiveauCertificat, &m.StructureCertifiante,
					&m.AnneeCertification, &m.Nationalite, &m.ARecuSuivi, &m.CreatedAt, &m.UpdatedAt}
			},
		},
		Apprentis: &RecordSet[models.ApprentiNonFormel]{
			db: db, now: now, name: "apprenti",
			table: "apprentis_non_formels", parentTable: tableNonFormal, parentCol: "structure_id",
			columns: []string{"secteur", "duree_apprentissage", "masculin", "feminin",
				"jeunes_inscrits_m", "jeunes_inscrits_f", "places_m", "places_f", "outilles_m", "outilles_f"},
			orderBy: []string{"secteur", "duree_apprentissage", "id"},
			values: func(a *models.ApprentiNonFormel) []interface{} {
				return []interface{}{a.Secteur, a.DureeApprentissage, a.Masculin, a.Feminin,
					a.JeunesInscritsM, a.JeunesInscritsF, a.PlacesM, a.PlacesF, a.OutillesM, a.OutillesF}
			},
			dest: func(a *models.ApprentiNonFormel) []interface{} {
				return []interface{}{&a.ID, &a.StructureID, &a.Secteur, &a.DureeApprentissage,
					&a.Masculin, &a.Feminin, &a.JeunesInscritsM, &a.JeunesInscritsF,
					&a.PlacesM, &a.PlacesF, &a.OutillesM, &a.OutillesF, &a.CreatedAt, &a.UpdatedAt}
			},
		},
		Metiers: &RecordSet[models.MetierNonFormel]{
			db: db, now: now, name: "metier",
			table: "metiers_non_formels", parentTable: tableNonFormal, parentCol: "structure_id",
			columns: []string{"secteur", "nom_metier", "duree_apprentissage",
				"promo_1_m", "promo_1_f", "promo_2_m", "promo_2_f", "promo_3_m", "promo_3_f",
				"handicapes_m", "handicapes_f", "refugies_m", "refugies_f",
				"retournes_m", "retournes_f", "deplaces_m", "deplaces_f"},
			orderBy: []string{"secteur", "nom_metier", "id"},
			values: func(m *models.MetierNonFormel) []interface{} {
				return []interface{}{m.Secteur, m.NomMetier, m.DureeApprentissage,
					m.Promo1M, m.Promo1F, m.Promo2M, m.Promo2F, m.Promo3M, m.Promo3F,
					m.HandicapesM, m.HandicapesF, m.RefugiesM, m.RefugiesF,
					m.RetournesM, m.RetournesF, m.DeplacesM, m.DeplacesF}
			},
			dest: func(m *models.MetierNonFormel) []interface{} {
				return []interface{}{&m.ID, &m.StructureID, &m.Secteur, &m.NomMetier, &m.DureeApprentissage,
					&m.Promo1M, &m.Promo1F, &m.Promo2M, &m.Promo2F, &m.Promo3M, &m.Promo3F,
					&m.HandicapesM, &m.HandicapesF, &m.RefugiesM, &m.RefugiesF,
					&m.RetournesM, &m.RetournesF, &m.DeplacesM, &m.DeplacesF, &m.CreatedAt, &m.UpdatedAt}
			},
		},
	}
}
