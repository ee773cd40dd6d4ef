// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import "time"

// Records attached to one establishment. They are deleted with it.

// ApprenantFormel counts learners of a formal establishment for one cycle
// and study year.
type ApprenantFormel struct {
	ID              int64     `json:"id"`
	EstablishmentID int64     `json:"etablissement_id"`
	Cycle           string    `json:"cycle" validate:"required,oneof=BASE_1 BASE_2 MOYEN_1 MOYEN_2"`
	AnneeEtude      string    `json:"annee_etude" validate:"required,oneof=1ERE 2EME 3EME 4EME"`
	Masculin        int       `json:"masculin" validate:"gte=0"`
	Feminin         int       `json:"feminin" validate:"gte=0"`
	RedoublantsM    int       `json:"redoublants_m" validate:"gte=0"`
	RedoublantsF    int       `json:"redoublants_f" validate:"gte=0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Total is masculin + feminin.
func (a *ApprenantFormel) Total() int { return a.Masculin + a.Feminin }

// FiliereFormel is a training track of a formal establishment.
type FiliereFormel struct {
	ID                    int64     `json:"id"`
	EstablishmentID       int64     `json:"etablissement_id"`
	Secteur               string    `json:"secteur" validate:"required,oneof=PRIMAIRE SECONDAIRE TERTIAIRE"`
	NomFiliere            string    `json:"nom_filiere" validate:"required,max=200"`
	DiplomePrepare        string    `json:"diplome_prepare" validate:"required,max=200"`
	Cycle                 string    `json:"cycle" validate:"required,oneof=BASE_1 BASE_2 MOYEN_1 MOYEN_2"`
	DureeFormation        int       `json:"duree_formation" validate:"gt=0"` // months
	NbGroupesPedagogiques int       `json:"nb_groupes_pedagogiques" validate:"gte=0"`
	HeuresPratiqueHebdo   int       `json:"heures_pratique_hebdo" validate:"gte=0"`
	StageObligatoire      bool      `json:"stage_obligatoire"`
	EffectifM             int       `json:"effectif_m" validate:"gte=0"`
	EffectifF             int       `json:"effectif_f" validate:"gte=0"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FormateurFormel is a trainer of a formal establishment.
type FormateurFormel struct {
	ID                    int64     `json:"id"`
	EstablishmentID       int64     `json:"etablissement_id"`
	Statut                string    `json:"statut" validate:"required,oneof=FONCTIONNAIRE CONTRACTUEL ASCN PERMANENT VOLONTAIRE"`
	Nationalite           string    `json:"nationalite" validate:"required,oneof=NIGERIENNE ETRANGERE"`
	NomPrenom             string    `json:"nom_prenom" validate:"required,max=200"`
	Sexe                  string    `json:"sexe" validate:"required,oneof=M F"`
	DateNaissance         time.Time `json:"date_naissance" validate:"required"`
	AnneeRecrutement      int       `json:"annee_recrutement" validate:"gte=1950,lte=2100"`
	DiplomeAcademique     string    `json:"diplome_academique" validate:"max=100"`
	DiplomeProfessionnel  string    `json:"diplome_professionnel" validate:"max=100"`
	DisciplinesEnseignees string    `json:"disciplines_enseignees" validate:"required"`
	VolumeHoraireHebdo    int       `json:"volume_horaire_hebdo" validate:"gte=0"`
	ARecuRenforcement     bool      `json:"a_recu_renforcement"`
	AEteInspecte          bool      `json:"a_ete_inspecte"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// MaitreArtisan is a master craftsman or trainer of a non-formal structure.
type MaitreArtisan struct {
	ID                     int64     `json:"id"`
	StructureID            int64     `json:"structure_id"`
	NomPrenom              string    `json:"nom_prenom" validate:"required,max=200"`
	Sexe                   string    `json:"sexe" validate:"required,oneof=M F"`
	Grade                  string    `json:"grade" validate:"required,oneof=MAITRE FORMATEUR"`
	FormationInitiale      bool      `json:"formation_initiale"`
	NbFormationContinue    int       `json:"nb_formation_continue" validate:"gte=0"`
	QualificationCertifiee bool      `json:"qualification_certifiee"`
	DernierCertificat      string    `json:"dernier_certificat" validate:"max=200"`
	NiveauCertificat       string    `json:"niveau_certificat" validate:"max=100"`
	StructureCertifiante   string    `json:"structure_certifiante" validate:"max=200"`
	AnneeCertification     *int      `json:"annee_certification,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	Nationalite            string    `json:"nationalite" validate:"omitempty,oneof=NIGERIEN UEMOA AUTRE"`
	ARecuSuivi             bool      `json:"a_recu_suivi"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ApprentiNonFormel counts apprentices of a non-formal structure for one
// sector and apprenticeship duration.
type ApprentiNonFormel struct {
	ID                 int64     `json:"id"`
	StructureID        int64     `json:"structure_id"`
	Secteur            string    `json:"secteur" validate:"required,oneof=PRIMAIRE SECONDAIRE TERTIAIRE"`
	DureeApprentissage string    `json:"duree_apprentissage" validate:"required,oneof=<=3 4-9 >9"`
	Masculin           int       `json:"masculin" validate:"gte=0"`
	Feminin            int       `json:"feminin" validate:"gte=0"`
	JeunesInscritsM    int       `json:"jeunes_inscrits_m" validate:"gte=0"`
	JeunesInscritsF    int       `json:"jeunes_inscrits_f" validate:"gte=0"`
	PlacesM            int       `json:"places_m" validate:"gte=0"`
	PlacesF            int       `json:"places_f" validate:"gte=0"`
	OutillesM          int       `json:"outilles_m" validate:"gte=0"`
	OutillesF          int       `json:"outilles_f" validate:"gte=0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Total is masculin + feminin.
func (a *ApprentiNonFormel) Total() int { return a.Masculin + a.Feminin }

// MetierNonFormel is a trade taught by a non-formal structure, with up to
// three cohorts.
type MetierNonFormel struct {
	ID                 int64     `json:"id"`
	StructureID        int64     `json:"structure_id"`
	Secteur            string    `json:"secteur" validate:"required,oneof=PRIMAIRE SECONDAIRE TERTIAIRE"`
	NomMetier          string    `json:"nom_metier" validate:"required,max=200"`
	DureeApprentissage string    `json:"duree_apprentissage" validate:"required,oneof=<=3 4-9 >9"`
	Promo1M            int       `json:"promo_1_m" validate:"gte=0"`
	Promo1F            int       `json:"promo_1_f" validate:"gte=0"`
	Promo2M            int       `json:"promo_2_m" validate:"gte=0"`
	Promo2F            int       `json:"promo_2_f" validate:"gte=0"`
	Promo3M            int       `json:"promo_3_m" validate:"gte=0"`
	Promo3F            int       `json:"promo_3_f" validate:"gte=0"`
	HandicapesM        int       `json:"handicapes_m" validate:"gte=0"`
	HandicapesF        int       `json:"handicapes_f" validate:"gte=0"`
	RefugiesM          int       `json:"refugies_m" validate:"gte=0"`
	RefugiesF          int       `json:"refugies_f" validate:"gte=0"`
	RetournesM         int       `json:"retournes_m" validate:"gte=0"`
	RetournesF         int       `json:"retournes_f" validate:"gte=0"`
	DeplacesM          int       `json:"deplaces_m" validate:"gte=0"`
	DeplacesF          int       `json:"deplaces_f" validate:"gte=0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TotalApprentis sums the three cohorts.
func (m *MetierNonFormel) TotalApprentis() int {
	return m.Promo1M + m.Promo1F + m.Promo2M + m.Promo2F + m.Promo3M + m.Promo3F
}

// FormalSummary aggregates the records of a formal establishment.
type FormalSummary struct {
	EstablishmentID      int64 `json:"etablissement_id"`
	TotalApprenants      int   `json:"total_apprenants"`
	TotalRedoublants     int   `json:"total_redoublants"`
	TotalFilieres        int   `json:"total_filieres"`
	TotalFormateurs      int   `json:"total_formateurs"`
	CompletionPercentage int   `json:"progression_globale"`
}

// NonFormalSummary aggregates the records of a non-formal structure.
type NonFormalSummary struct {
	StructureID           int64 `json:"structure_id"`
	TotalApprentis        int   `json:"total_apprentis"`
	TotalApprentisMetiers int   `json:"total_apprentis_metiers"`
	TotalMaitres          int   `json:"total_maitres"`
	TotalMetiers          int   `json:"total_metiers"`
	CompletionPercentage  int   `json:"progression_globale"`
}
