// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package authz

import (
	"net/http"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer

	// OnForbidden writes the 403 response. Defaults to http.Error.
	OnForbidden func(w http.ResponseWriter, r *http.Request)
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		OnForbidden: func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		},
	}
}

// Authorize derives the action from the HTTP method and checks the
// subject's role against object.
func (m *Middleware) Authorize(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.check(object, "", next)
	}
}

// Require checks a fixed action regardless of the HTTP method.
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.check(object, action, next)
	}
}

func (m *Middleware) check(object, action string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		act := action
		if act == "" {
			act = methodToAction(r.Method)
		}

		subject := auth.SubjectFromContext(r.Context())
		if subject == nil {
			metrics.AuthzDecisions.WithLabelValues(object, act, "denied").Inc()
			m.OnForbidden(w, r)
			return
		}

		allowed, err := m.enforcer.Enforce(subject.Role, object, act)
		if err != nil {
			metrics.AuthzDecisions.WithLabelValues(object, act, "error").Inc()
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			metrics.AuthzDecisions.WithLabelValues(object, act, "denied").Inc()
			logging.Ctx(r.Context()).Debug().Str("role", subject.Role).Str("object", object).Str("action", act).
				Msg("Authorization denied")
			m.OnForbidden(w, r)
			return
		}

		metrics.AuthzDecisions.WithLabelValues(object, act, "allowed").Inc()
		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
