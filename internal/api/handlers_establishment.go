// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eftp-registry/internal/establishment"
	"github.com/tomtom215/eftp-registry/internal/models"
)

func establishmentListOptions(r *http.Request) establishment.ListOptions {
	return establishment.ListOptions{
		RegionID:  int64(getIntParam(r, "region_id", 0)),
		CommuneID: int64(getIntParam(r, "commune_id", 0)),
		Limit:     getIntParam(r, "limit", 0),
		Offset:    getIntParam(r, "offset", 0),
	}
}

func (h *Handler) ListFormal(w http.ResponseWriter, r *http.Request) {
	list, err := h.establishments.ListFormal(r.Context(), establishmentListOptions(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	views := make([]establishment.FormalView, len(list))
	for i, e := range list {
		views[i] = establishment.NewFormalView(e)
	}
	respondList(w, r, views, len(views))
}

func (h *Handler) CreateFormal(w http.ResponseWriter, r *http.Request) {
	var e models.EtablissementFormel
	if err := decodeJSON(w, r, &e); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.CreateFormal(r.Context(), &e); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, establishment.NewFormalView(&e))
}

func (h *Handler) GetFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	e, err := h.establishments.GetFormal(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, establishment.NewFormalView(e))
}

func (h *Handler) DeleteFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.DeleteFormal(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *Handler) ListNonFormal(w http.ResponseWriter, r *http.Request) {
	list, err := h.establishments.ListNonFormal(r.Context(), establishmentListOptions(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	views := make([]establishment.NonFormalView, len(list))
	for i, st := range list {
		views[i] = establishment.NewNonFormalView(st)
	}
	respondList(w, r, views, len(views))
}

func (h *Handler) CreateNonFormal(w http.ResponseWriter, r *http.Request) {
	var st models.StructureNonFormelle
	if err := decodeJSON(w, r, &st); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.CreateNonFormal(r.Context(), &st); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, establishment.NewNonFormalView(&st))
}

func (h *Handler) GetNonFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	st, err := h.establishments.GetNonFormal(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, establishment.NewNonFormalView(st))
}

func (h *Handler) DeleteNonFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.DeleteNonFormal(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]int64{"deleted": id})
}

func (h *Handler) UpdateFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	var e models.EtablissementFormel
	if err := decodeJSON(w, r, &e); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.UpdateFormal(r.Context(), id, &e); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, establishment.NewFormalView(&e))
}

func (h *Handler) UpdateNonFormal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	var st models.StructureNonFormelle
	if err := decodeJSON(w, r, &st); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.establishments.UpdateNonFormal(r.Context(), id, &st); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, establishment.NewNonFormalView(&st))
}
