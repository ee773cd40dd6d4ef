// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eftp-registry/internal/database"
)

// HealthLive is the liveness check. It never touches the database.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 once the database is reachable and migrated,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.PingContext(r.Context()) == nil

	var version int64
	if dbConnected {
		v, err := database.SchemaVersion(h.db)
		if err != nil {
			dbConnected = false
		}
		version = v
	}

	status := http.StatusOK
	if !dbConnected || version == 0 {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, &APIResponse{
		Success: status == http.StatusOK,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"schema_version":     version,
			"ready_to_serve":     status == http.StatusOK,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: newMetadata(r),
	})
}
