// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	locimport "github.com/tomtom215/eftp-registry/internal/import"
	"github.com/tomtom215/eftp-registry/internal/location"
	"github.com/tomtom215/eftp-registry/internal/models"
)

func levelParam(r *http.Request) (models.Level, error) {
	raw := chi.URLParam(r, "level")
	level, ok := models.ParseLevel(raw)
	if !ok {
		return "", models.NewValidationError("level", "unknown level %q", raw)
	}
	return level, nil
}

// ListLocations lists a level, optionally restricted to the children of
// ?parent=CODE.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	level, err := levelParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	nodes, err := h.registry.ListChildren(r.Context(), level, r.URL.Query().Get("parent"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, r, nodes, len(nodes))
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	level, err := levelParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	node, err := h.registry.Get(r.Context(), level, chi.URLParam(r, "code"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, node)
}

// PutLocation creates or updates the node at {code}. The path code wins
// over any code in the body.
func (h *Handler) PutLocation(w http.ResponseWriter, r *http.Request) {
	level, err := levelParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	var in location.Input
	if err := decodeJSON(w, r, &in); err != nil {
		respondDomainError(w, r, err)
		return
	}
	in.Code = chi.URLParam(r, "code")

	node, created, err := h.registry.CreateOrUpdate(r.Context(), level, in)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(w, r, status, node)
}

// DeleteLocation removes a node and its descendants unless an
// establishment references one of them.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	level, err := levelParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	code := chi.URLParam(r, "code")
	if err := h.registry.Delete(r.Context(), level, code); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]string{"deleted": code})
}

// ImportLocations loads a multipart "file" (.csv or .xlsx) into the level
// in one transaction.
func (h *Handler) ImportLocations(w http.ResponseWriter, r *http.Request) {
	level, err := levelParam(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondDomainError(w, r, models.NewValidationError("file", "multipart field \"file\" is required: %v", err))
		return
	}
	defer file.Close()

	format, err := locimport.FormatFromPath(header.Filename)
	if err != nil {
		respondDomainError(w, r, models.NewValidationError("file", "%v", err))
		return
	}
	table, err := locimport.Read(file, format)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			respondDomainError(w, r, err)
			return
		}
		respondDomainError(w, r, models.NewValidationError("file", "unreadable %s file: %v", format, err))
		return
	}

	stats, err := h.importer.Import(r.Context(), level, table)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, stats)
}

func (h *Handler) LocationCounts(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Counts(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, c)
}

// SearchLocations autocompletes region, departement and commune names or
// codes from ?q=.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.registry.Search(r.Context(), r.URL.Query().Get("q"), getIntParam(r, "limit", location.DefaultSearchLimit))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, r, nodes, len(nodes))
}
