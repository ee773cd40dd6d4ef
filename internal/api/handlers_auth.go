// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a JWT, returned in the body and as an
// HttpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, r, http.StatusNotFound, &APIError{Code: CodeNotFound, Message: "Authentication is disabled"}, nil)
		return
	}

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondDomainError(w, r, verr)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})
	respondData(w, r, http.StatusOK, res)
}

// Logout revokes the caller's token and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil {
		if err := h.auth.Logout(r.Context(), auth.SubjectFromContext(r.Context())); err != nil {
			respondDomainError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondData(w, r, http.StatusOK, map[string]bool{"logged_out": true})
}

// Me returns the authenticated subject.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, auth.SubjectFromContext(r.Context()))
}
