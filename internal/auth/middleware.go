// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/eftp-registry/internal/logging"
)

// ErrNoCredentials indicates no token was presented.
var ErrNoCredentials = errors.New("no credentials provided")

// TokenCookieName is the cookie carrying the JWT for browser clients.
const TokenCookieName = "token"

// Middleware authenticates requests and stores the Subject in the context.
type Middleware struct {
	service *Service
	mode    AuthMode

	// OnUnauthorized writes the 401 response. Defaults to http.Error.
	OnUnauthorized func(w http.ResponseWriter, r *http.Request, err error)
}

// NewMiddleware creates authentication middleware for mode.
func NewMiddleware(service *Service, mode AuthMode) *Middleware {
	return &Middleware{
		service: service,
		mode:    mode,
		OnUnauthorized: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		},
	}
}

// Authenticate is chi-compatible middleware that enforces authentication.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			subject := anonymousAdmin
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), &subject)))
			return
		}

		token, err := extractBearerToken(r)
		if err != nil {
			m.OnUnauthorized(w, r, err)
			return
		}

		subject, err := m.service.Verify(r.Context(), token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token rejected")
			m.OnUnauthorized(w, r, err)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUsername(ctx, subject.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken reads the Authorization header, falling back to the
// token cookie.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
		return "", ErrNoCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
