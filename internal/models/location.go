// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"strings"
	"time"
)

// Level is one tier of the RENALOC administrative hierarchy.
type Level string

const (
	LevelRegion         Level = "region"
	LevelDepartment     Level = "departement"
	LevelCommune        Level = "commune"
	LevelQuarterVillage Level = "quartier"
)

// Levels lists the hierarchy from root to leaf.
var Levels = []Level{LevelRegion, LevelDepartment, LevelCommune, LevelQuarterVillage}

// levelInfo holds the static shape of each level.
type levelInfo struct {
	codeLength   int
	table        string
	parentColumn string // FK column in this level's table
	importColumn string // spreadsheet column holding the parent code
	label        string
}

var levelTable = map[Level]levelInfo{
	LevelRegion:         {codeLength: 2, table: "regions", label: "Région"},
	LevelDepartment:     {codeLength: 3, table: "departements", parentColumn: "region_id", importColumn: "region_code", label: "Département"},
	LevelCommune:        {codeLength: 5, table: "communes", parentColumn: "departement_id", importColumn: "departement_code", label: "Commune"},
	LevelQuarterVillage: {codeLength: 8, table: "quartiers_villages", parentColumn: "commune_id", importColumn: "commune_code", label: "Quartier/Village"},
}

// ParseLevel accepts singular or plural level names, as used by the
// import --type selector ("regions", "departements", "communes", "quartiers").
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region", "regions":
		return LevelRegion, true
	case "departement", "departements", "department", "departments":
		return LevelDepartment, true
	case "commune", "communes":
		return LevelCommune, true
	case "quartier", "quartiers", "quartiervillage", "quartiers_villages", "quarter", "quarters":
		return LevelQuarterVillage, true
	}
	return "", false
}

// Valid reports whether l is one of the four levels.
func (l Level) Valid() bool {
	_, ok := levelTable[l]
	return ok
}

// CodeLength is the exact number of digits in codes of this level.
func (l Level) CodeLength() int { return levelTable[l].codeLength }

// Table is the SQL table holding this level.
func (l Level) Table() string { return levelTable[l].table }

// ParentColumn is the FK column to the parent level; "" for regions.
func (l Level) ParentColumn() string { return levelTable[l].parentColumn }

// ImportParentColumn is the spreadsheet column carrying the parent code.
func (l Level) ImportParentColumn() string { return levelTable[l].importColumn }

// Label is the display name.
func (l Level) Label() string { return levelTable[l].label }

// Parent returns the parent level; ok is false for regions.
func (l Level) Parent() (Level, bool) {
	for i, lv := range Levels {
		if lv == l && i > 0 {
			return Levels[i-1], true
		}
	}
	return "", false
}

// Child returns the child level; ok is false for quarters/villages.
func (l Level) Child() (Level, bool) {
	for i, lv := range Levels {
		if lv == l && i < len(Levels)-1 {
			return Levels[i+1], true
		}
	}
	return "", false
}

// CommuneType classifies a commune.
type CommuneType string

const (
	CommuneUrban CommuneType = "URBAINE"
	CommuneRural CommuneType = "RURALE"
)

// Valid reports whether t is URBAINE or RURALE.
func (t CommuneType) Valid() bool {
	return t == CommuneUrban || t == CommuneRural
}

// Location is a node of any level.
type Location struct {
	ID         int64       `json:"id"`
	Level      Level       `json:"level"`
	Code       string      `json:"code"`
	Name       string      `json:"nom"`
	ParentID   *int64      `json:"parent_id,omitempty"`
	ParentCode string      `json:"parent_code,omitempty"`
	Type       CommuneType `json:"type,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
