// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package services

import (
	"context"
	"fmt"
)

// BackupScheduler is satisfied by *backup.Scheduler.
type BackupScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// BackupSchedulerService adapts the cron-driven backup scheduler's
// Start/Stop lifecycle to suture's Serve.
//
// Stop waits for an in-flight scheduled backup to finish, so the
// supervisor timeout should exceed the backup tool timeout.
type BackupSchedulerService struct {
	scheduler BackupScheduler
	name      string
}

func NewBackupSchedulerService(scheduler BackupScheduler) *BackupSchedulerService {
	return &BackupSchedulerService{
		scheduler: scheduler,
		name:      "backup-scheduler",
	}
}

// Serve implements suture.Service. A Start failure is returned so that
// suture applies its restart backoff.
func (s *BackupSchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("backup scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("backup scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *BackupSchedulerService) String() string {
	return s.name
}
