// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package location

import (
	"context"
	"errors"

	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// Observer receives committed registry mutations.
type Observer interface {
	NodeSaved(ctx context.Context, node *models.Location, created bool)
	NodeDeleted(ctx context.Context, node *models.Location)
}

type nopObserver struct{}

func (nopObserver) NodeSaved(context.Context, *models.Location, bool) {}
func (nopObserver) NodeDeleted(context.Context, *models.Location)     {}

// LogObserver writes one structured log line per mutation.
type LogObserver struct{}

// NodeSaved implements Observer.
func (LogObserver) NodeSaved(ctx context.Context, node *models.Location, created bool) {
	msg := "Location updated"
	if created {
		msg = "Location created"
	}
	logging.Ctx(ctx).Info().
		Str("level", string(node.Level)).
		Str("code", node.Code).
		Str("nom", node.Name).
		Msg(msg)
}

// NodeDeleted implements Observer.
func (LogObserver) NodeDeleted(ctx context.Context, node *models.Location) {
	logging.Ctx(ctx).Info().
		Str("level", string(node.Level)).
		Str("code", node.Code).
		Str("nom", node.Name).
		Msg("Location deleted")
}

// MetricsObserver counts mutations per level.
type MetricsObserver struct{}

// NodeSaved implements Observer.
func (MetricsObserver) NodeSaved(_ context.Context, node *models.Location, created bool) {
	op := "update"
	if created {
		op = "create"
	}
	metrics.RecordLocationMutation(string(node.Level), op)
}

// NodeDeleted implements Observer.
func (MetricsObserver) NodeDeleted(_ context.Context, node *models.Location) {
	metrics.RecordLocationMutation(string(node.Level), "delete")
}

// Observers fans out to each observer in order.
type Observers []Observer

// NodeSaved implements Observer.
func (o Observers) NodeSaved(ctx context.Context, node *models.Location, created bool) {
	for _, obs := range o {
		obs.NodeSaved(ctx, node, created)
	}
}

// NodeDeleted implements Observer.
func (o Observers) NodeDeleted(ctx context.Context, node *models.Location) {
	for _, obs := range o {
		obs.NodeDeleted(ctx, node)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
