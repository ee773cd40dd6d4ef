// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"

	"github.com/tomtom215/eftp-registry/internal/admin"
	"github.com/tomtom215/eftp-registry/internal/backup"
	"github.com/tomtom215/eftp-registry/internal/establishment"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// dashboardBackups is the number of recent successful backups shown.
const dashboardBackups = 5

// Dashboard is the administration landing summary.
type Dashboard struct {
	Establishments establishment.Counts   `json:"etablissements"`
	Locations      location.Counts        `json:"localites"`
	RecentBackups  []*models.BackupRecord `json:"sauvegardes_recentes"`
}

// AdminMenu returns the administration sections in configured order.
func (h *Handler) AdminMenu(w http.ResponseWriter, r *http.Request) {
	apps := h.menu.Build(admin.Sections())
	respondList(w, r, apps, len(apps))
}

// AdminDashboard returns establishment and location counts with the latest
// successful backups.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var d Dashboard
	var err error
	if d.Establishments, err = h.establishments.Counts(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if d.Locations, err = h.registry.Counts(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	d.RecentBackups, err = h.backups.ListBackups(ctx, backup.ListOptions{Status: models.StatusSuccess, Limit: dashboardBackups})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, d)
}
