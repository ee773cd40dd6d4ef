// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package backup

import (
	"context"

	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// ApplyRetention keeps the newest cfg.MaxBackups successful backups and
// deletes older ones. FAILED records are left for inspection. It returns
// the number of backups deleted.
func (m *Manager) ApplyRetention(ctx context.Context) (int, error) {
	if m.cfg.MaxBackups <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stale, err := m.store.listBackups(ctx, ListOptions{
		Status: models.StatusSuccess,
		Offset: m.cfg.MaxBackups,
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, b := range stale {
		if err := m.deleteLocked(ctx, b.ID); err != nil {
			return deleted, err
		}
		deleted++
		metrics.BackupsPruned.Inc()
	}
	if deleted > 0 {
		logging.Ctx(ctx).Info().Int("deleted", deleted).Int("kept", m.cfg.MaxBackups).Msg("Backup retention applied")
	}
	return deleted, nil
}
