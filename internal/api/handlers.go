// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package api provides the registry's JSON HTTP API on a chi router.
package api

import (
	"database/sql"
	"time"

	"github.com/tomtom215/eftp-registry/internal/admin"
	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/backup"
	"github.com/tomtom215/eftp-registry/internal/establishment"
	locimport "github.com/tomtom215/eftp-registry/internal/import"
	"github.com/tomtom215/eftp-registry/internal/location"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 32 << 20
)

// Dependencies are the services behind the handlers.
type Dependencies struct {
	DB             *sql.DB
	Backups        *backup.Manager
	Registry       *location.Registry
	Importer       *locimport.Importer
	Establishments *establishment.Store
	Menu           *admin.Menu
	Auth           *auth.Service
}

// Handler implements the HTTP endpoints.
type Handler struct {
	db             *sql.DB
	backups        *backup.Manager
	registry       *location.Registry
	importer       *locimport.Importer
	establishments *establishment.Store
	menu           *admin.Menu
	auth           *auth.Service
	startTime      time.Time
}

// NewHandler creates a handler. Auth may be nil when authentication is
// disabled; the login endpoint then answers 404.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		db:             deps.DB,
		backups:        deps.Backups,
		registry:       deps.Registry,
		importer:       deps.Importer,
		establishments: deps.Establishments,
		menu:           deps.Menu,
		auth:           deps.Auth,
		startTime:      time.Now(),
	}
}
