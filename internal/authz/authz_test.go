// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package authz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/models"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(EnforcerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEnforce_RoleHierarchy(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{models.RoleViewer, ObjectLocations, ActionRead, true},
		{models.RoleViewer, ObjectLocations, ActionWrite, false},
		{models.RoleViewer, ObjectEstablishments, ActionDelete, false},
		{models.RoleViewer, ObjectBackups, ActionRead, false},
		{models.RoleViewer, ObjectAdmin, ActionRead, true},

		{models.RoleEditor, ObjectLocations, ActionRead, true},
		{models.RoleEditor, ObjectLocations, ActionDelete, true},
		{models.RoleEditor, ObjectEstablishments, ActionWrite, true},
		{models.RoleEditor, ObjectBackups, ActionWrite, false},

		{models.RoleAdmin, ObjectBackups, ActionRead, true},
		{models.RoleAdmin, ObjectBackups, ActionWrite, true},
		{models.RoleAdmin, ObjectBackups, ActionDelete, true},
		{models.RoleAdmin, ObjectLocations, ActionWrite, true},
		{models.RoleAdmin, ObjectAdmin, ActionRead, true},

		{"intruder", ObjectLocations, ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Enforce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEnforcer_FilePolicy(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(policy, []byte("p, viewer, backups, read\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := NewEnforcer(EnforcerConfig{PolicyPath: policy})
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Enforce(models.RoleViewer, ObjectBackups, ActionRead); !ok {
		t.Error("file policy not applied")
	}
	if ok, _ := e.Enforce(models.RoleViewer, ObjectLocations, ActionRead); ok {
		t.Error("embedded policy leaked into file policy")
	}
}

func TestMiddleware(t *testing.T) {
	mw := NewMiddleware(newTestEnforcer(t))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		role    string
		method  string
		handler http.Handler
		want    int
	}{
		{"viewer reads locations", models.RoleViewer, http.MethodGet, mw.Authorize(ObjectLocations)(ok), http.StatusOK},
		{"viewer cannot write locations", models.RoleViewer, http.MethodPut, mw.Authorize(ObjectLocations)(ok), http.StatusForbidden},
		{"editor deletes establishments", models.RoleEditor, http.MethodDelete, mw.Authorize(ObjectEstablishments)(ok), http.StatusOK},
		{"editor cannot restore", models.RoleEditor, http.MethodPost, mw.Authorize(ObjectBackups)(ok), http.StatusForbidden},
		{"admin restores", models.RoleAdmin, http.MethodPost, mw.Authorize(ObjectBackups)(ok), http.StatusOK},
		{"require overrides method", models.RoleViewer, http.MethodPost, mw.Require(ObjectAdmin, ActionRead)(ok), http.StatusOK},
		{"no subject", "", http.MethodGet, mw.Authorize(ObjectLocations)(ok), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.role != "" {
				req = req.WithContext(auth.ContextWithSubject(req.Context(), &auth.Subject{Username: "u", Role: tt.role}))
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
