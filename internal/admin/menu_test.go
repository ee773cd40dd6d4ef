// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package admin

import (
	"strings"
	"testing"

	"github.com/tomtom215/eftp-registry/internal/config"
)

func labels(apps []App) string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.Label
	}
	return strings.Join(out, ",")
}

func modelNames(app App) string {
	out := make([]string, len(app.Models))
	for i, m := range app.Models {
		out[i] = strings.ToLower(m.ObjectName)
	}
	return strings.Join(out, ",")
}

func TestMenuBuild(t *testing.T) {
	apps := []App{
		{Label: "auth"},
		{Label: "renaloc", Models: []Model{
			{ObjectName: "Commune"}, {ObjectName: "Extra"}, {ObjectName: "Region"}, {ObjectName: "QuartierVillage"},
		}},
		{Label: "core"},
		{Label: "eftp_formel"},
		{Label: "sessions"},
	}

	tests := []struct {
		name       string
		ordering   Ordering
		wantApps   string
		wantModels string
	}{
		{
			name: "configured apps first, rest in incoming order",
			ordering: Ordering{
				Apps:   []string{"eftp_formel", "eftp_non_formel", "renaloc", "core"},
				Models: map[string][]string{"renaloc": {"region", "departement", "commune", "quartiervillage"}},
			},
			wantApps:   "eftp_formel,renaloc,core,auth,sessions",
			wantModels: "region,commune,quartiervillage,extra",
		},
		{
			name:       "empty ordering keeps input",
			ordering:   Ordering{},
			wantApps:   "auth,renaloc,core,eftp_formel,sessions",
			wantModels: "commune,extra,region,quartiervillage",
		},
		{
			name: "labels match case-insensitively",
			ordering: Ordering{
				Apps:   []string{"CORE", "Renaloc"},
				Models: map[string][]string{"RENALOC": {"QuartierVillage"}},
			},
			wantApps:   "core,renaloc,auth,eftp_formel,sessions",
			wantModels: "quartiervillage,commune,extra,region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMenu(tt.ordering).Build(apps)
			if labels(got) != tt.wantApps {
				t.Errorf("apps = %s, want %s", labels(got), tt.wantApps)
			}
			for _, app := range got {
				if app.Label == "renaloc" && modelNames(app) != tt.wantModels {
					t.Errorf("renaloc models = %s, want %s", modelNames(app), tt.wantModels)
				}
			}
		})
	}

	// Input is left untouched.
	if labels(apps) != "auth,renaloc,core,eftp_formel,sessions" || modelNames(apps[1]) != "commune,extra,region,quartiervillage" {
		t.Error("Build mutated its input")
	}
}

func TestMenuBuild_DefaultConfig(t *testing.T) {
	cfg := config.AdminConfig{
		AppOrder: []string{"eftp_formel", "eftp_non_formel", "renaloc", "core"},
		ModelOrder: map[string][]string{
			"renaloc": {"region", "departement", "commune", "quartiervillage"},
		},
	}
	got := NewMenu(OrderingFromConfig(cfg)).Build(Sections())

	if labels(got) != "eftp_formel,eftp_non_formel,renaloc,core" {
		t.Errorf("apps = %s", labels(got))
	}
	if modelNames(got[2]) != "region,departement,commune,quartiervillage" {
		t.Errorf("renaloc models = %s", modelNames(got[2]))
	}
}
