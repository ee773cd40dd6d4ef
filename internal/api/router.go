// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/authz"
	"github.com/tomtom215/eftp-registry/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler *Handler
	chiMw   *ChiMiddleware
	authn   *auth.Middleware
	authz   *authz.Middleware
}

// NewRouter creates a router. The auth middlewares' failure responses are
// switched to the JSON envelope.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, authn *auth.Middleware, authzMw *authz.Middleware) *Router {
	authn.OnUnauthorized = func(w http.ResponseWriter, r *http.Request, err error) {
		respondError(w, r, http.StatusUnauthorized, &APIError{
			Code:    CodeUnauthorized,
			Message: "Authentication required",
		}, err)
	}
	authzMw.OnForbidden = func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusForbidden, &APIError{
			Code:    CodeForbidden,
			Message: "Insufficient permissions",
		}, nil)
	}
	return &Router{handler: handler, chiMw: chiMw, authn: authn, authz: authzMw}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	h := rt.handler
	recs := h.establishments.Records()
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, &APIError{Code: CodeNotFound, Message: "Route not found"}, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, &APIError{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"}, nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.chiMw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders)

		r.With(rt.chiMw.RateLimitCustom(RateLimitLogin)).Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(rt.chiMw.RateLimit())
			r.Use(rt.authn.Authenticate)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)

			r.Route("/backups", func(r chi.Router) {
				r.Use(rt.authz.Authorize(authz.ObjectBackups))
				heavy := rt.chiMw.RateLimitCustom(RateLimitHeavy)

				r.Get("/", h.ListBackups)
				r.With(heavy).Post("/", h.CreateBackup)
				r.Get("/{id}", h.GetBackup)
				r.Delete("/{id}", h.DeleteBackup)
				r.With(heavy).Post("/{id}/restore", h.RestoreBackup)
				r.Get("/{id}/restores", h.ListRestores)
				r.Get("/{id}/download", h.DownloadBackup)
			})

			r.With(rt.authz.Authorize(authz.ObjectLocations)).Get("/locations/counts", h.LocationCounts)
			r.With(rt.authz.Authorize(authz.ObjectLocations)).Get("/locations/search", h.SearchLocations)
			r.Route("/locations/{level}", func(r chi.Router) {
				r.Use(rt.authz.Authorize(authz.ObjectLocations))

				r.Get("/", h.ListLocations)
				r.With(rt.chiMw.RateLimitCustom(RateLimitHeavy)).Post("/import", h.ImportLocations)
				r.Get("/{code}", h.GetLocation)
				r.Put("/{code}", h.PutLocation)
				r.Delete("/{code}", h.DeleteLocation)
			})

			r.Route("/establishments", func(r chi.Router) {
				r.Use(rt.authz.Authorize(authz.ObjectEstablishments))

				r.Get("/formal", h.ListFormal)
				r.Post("/formal", h.CreateFormal)
				r.Get("/formal/{id}", h.GetFormal)
				r.Put("/formal/{id}", h.UpdateFormal)
				r.Delete("/formal/{id}", h.DeleteFormal)
				r.Get("/formal/{id}/summary", h.FormalSummary)
				mountRecords(r, "/formal/{id}/apprenants", recs.Apprenants)
				mountRecords(r, "/formal/{id}/filieres", recs.Filieres)
				mountRecords(r, "/formal/{id}/formateurs", recs.Formateurs)

				r.Get("/nonformal", h.ListNonFormal)
				r.Post("/nonformal", h.CreateNonFormal)
				r.Get("/nonformal/{id}", h.GetNonFormal)
				r.Put("/nonformal/{id}", h.UpdateNonFormal)
				r.Delete("/nonformal/{id}", h.DeleteNonFormal)
				r.Get("/nonformal/{id}/summary", h.NonFormalSummary)
				mountRecords(r, "/nonformal/{id}/maitres", recs.Maitres)
				mountRecords(r, "/nonformal/{id}/apprentis", recs.Apprentis)
				mountRecords(r, "/nonformal/{id}/metiers", recs.Metiers)
			})

			r.With(rt.authz.Require(authz.ObjectAdmin, authz.ActionRead)).Get("/admin/menu", h.AdminMenu)
			r.With(rt.authz.Require(authz.ObjectAdmin, authz.ActionRead)).Get("/dashboard", h.AdminDashboard)
		})
	})

	return r
}
