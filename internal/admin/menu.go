// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package admin builds the administration menu from a declarative ordering.
//
// The ordering is plain configuration (config.AdminConfig) and is applied
// when the menu is rendered. Nothing in the registry of sections is mutated.
package admin

import (
	"strings"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/logging"
)

// Model is one entry of an app section.
type Model struct {
	ObjectName string `json:"object_name"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

// App is one section of the menu.
type App struct {
	Label  string  `json:"app_label"`
	Name   string  `json:"name"`
	Models []Model `json:"models"`
}

// Ordering is the declarative menu order: app labels first, then the
// model order inside each app. Keys are compared case-insensitively.
type Ordering struct {
	Apps   []string
	Models map[string][]string
}

// OrderingFromConfig converts the koanf-loaded admin section.
func OrderingFromConfig(cfg config.AdminConfig) Ordering {
	return Ordering{Apps: cfg.AppOrder, Models: cfg.ModelOrder}
}

// Menu applies an Ordering to a list of sections.
type Menu struct {
	ordering Ordering
}

// NewMenu creates a Menu for ordering.
func NewMenu(ordering Ordering) *Menu {
	return &Menu{ordering: ordering}
}

// Build returns apps reordered. Configured apps come first in configured
// order, followed by the remaining apps in their incoming order. Inside a
// configured app, listed models come first and unlisted models keep their
// incoming order after them. The input slice is not modified.
func (m *Menu) Build(apps []App) []App {
	out := make([]App, 0, len(apps))
	placed := make([]bool, len(apps))

	for _, label := range m.ordering.Apps {
		for i, app := range apps {
			if placed[i] || !strings.EqualFold(app.Label, label) {
				continue
			}
			app.Models = m.orderModels(app.Label, app.Models)
			out = append(out, app)
			placed[i] = true
			break
		}
	}
	for i, app := range apps {
		if !placed[i] {
			out = append(out, app)
		}
	}

	logging.Debug().Int("apps", len(out)).Msg("Admin menu built")
	return out
}

func (m *Menu) orderModels(label string, models []Model) []Model {
	order := m.modelOrder(label)
	if len(order) == 0 {
		return append([]Model(nil), models...)
	}

	out := make([]Model, 0, len(models))
	placed := make([]bool, len(models))
	for _, name := range order {
		for i, model := range models {
			if !placed[i] && strings.EqualFold(model.ObjectName, name) {
				out = append(out, model)
				placed[i] = true
				break
			}
		}
	}
	for i, model := range models {
		if !placed[i] {
			out = append(out, model)
		}
	}
	return out
}

func (m *Menu) modelOrder(label string) []string {
	if order, ok := m.ordering.Models[label]; ok {
		return order
	}
	for k, order := range m.ordering.Models {
		if strings.EqualFold(k, label) {
			return order
		}
	}
	return nil
}

// Sections lists the administrable models of the registry in their
// natural (unordered) form.
func Sections() []App {
	return []App{
		{Label: "core", Name: "Sauvegardes", Models: []Model{
			{ObjectName: "BackupHistory", Name: "Historique des sauvegardes", URL: "/api/v1/backups"},
			{ObjectName: "RestoreHistory", Name: "Historique des restaurations", URL: "/api/v1/backups"},
		}},
		{Label: "renaloc", Name: "Répertoire des localités", Models: []Model{
			{ObjectName: "Commune", Name: "Communes", URL: "/api/v1/locations/commune"},
			{ObjectName: "Departement", Name: "Départements", URL: "/api/v1/locations/departement"},
			{ObjectName: "QuartierVillage", Name: "Quartiers/Villages", URL: "/api/v1/locations/quartier"},
			{ObjectName: "Region", Name: "Régions", URL: "/api/v1/locations/region"},
		}},
		{Label: "eftp_formel", Name: "EFTP formel", Models: []Model{
			{ObjectName: "EtablissementFormel", Name: "Établissements formels", URL: "/api/v1/establishments/formal"},
		}},
		{Label: "eftp_non_formel", Name: "EFTP non formel", Models: []Model{
			{ObjectName: "StructureNonFormelle", Name: "Structures non formelles", URL: "/api/v1/establishments/nonformal"},
		}},
	}
}
