// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package establishment

import "github.com/tomtom215/eftp-registry/internal/models"

// FormalView is the API representation of a formal establishment.
type FormalView struct {
	*models.EtablissementFormel
	CompletionPercentage int `json:"completion_percentage"`
}

// NonFormalView is the API representation of a non-formal structure.
type NonFormalView struct {
	*models.StructureNonFormelle
	CompletionPercentage int `json:"completion_percentage"`
}

// NewFormalView attaches the derived completion percentage.
func NewFormalView(e *models.EtablissementFormel) FormalView {
	return FormalView{EtablissementFormel: e, CompletionPercentage: models.CompletionPercentage(e)}
}

// NewNonFormalView attaches the derived completion percentage.
func NewNonFormalView(st *models.StructureNonFormelle) NonFormalView {
	return NonFormalView{StructureNonFormelle: st, CompletionPercentage: models.CompletionPercentage(st)}
}
