// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eftp-registry/internal/establishment"
)

// mountRecords serves one record set under pattern, which must contain {id}
// for the owning establishment.
func mountRecords[T any](r chi.Router, pattern string, rs *establishment.RecordSet[T]) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", listRecords(rs))
		r.Post("/", createRecord(rs))
		r.Get("/{recordID}", getRecord(rs))
		r.Put("/{recordID}", updateRecord(rs))
		r.Delete("/{recordID}", deleteRecord(rs))
	})
}

func recordIDs(r *http.Request) (parent, id int64, err error) {
	if parent, err = pathInt64(chi.URLParam(r, "id"), "id"); err != nil {
		return 0, 0, err
	}
	if raw := chi.URLParam(r, "recordID"); raw != "" {
		id, err = pathInt64(raw, "recordID")
	}
	return parent, id, err
}

func listRecords[T any](rs *establishment.RecordSet[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, _, err := recordIDs(r)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		list, err := rs.List(r.Context(), parent)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondList(w, r, list, len(list))
	}
}

func createRecord[T any](rs *establishment.RecordSet[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, _, err := recordIDs(r)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		rec := new(T)
		if err := decodeJSON(w, r, rec); err != nil {
			respondDomainError(w, r, err)
			return
		}
		if err := rs.Create(r.Context(), parent, rec); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondData(w, r, http.StatusCreated, rec)
	}
}

func getRecord[T any](rs *establishment.RecordSet[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, id, err := recordIDs(r)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		rec, err := rs.Get(r.Context(), parent, id)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondData(w, r, http.StatusOK, rec)
	}
}

func updateRecord[T any](rs *establishment.RecordSet[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, id, err := recordIDs(r)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		rec := new(T)
		if err := decodeJSON(w, r, rec); err != nil {
			respondDomainError(w, r, err)
			return
		}
		if err := rs.Update(r.Context(), parent, id, rec); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondData(w, r, http.StatusOK, rec)
	}
}

func deleteRecord[T any](rs *establishment.RecordSet[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent, id, err := recordIDs(r)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		if err := rs.Delete(r.Context(), parent, id); err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondData(w, r, http.StatusOK, map[string]int64{"deleted": id})
	}
}

func (h *Handler) FormalSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	sum, err := h.establishments.FormalSummary(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, sum)
}

func (h *Handler) NonFormalSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	sum, err := h.establishments.NonFormalSummary(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, sum)
}
