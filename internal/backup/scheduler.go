// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

const scheduledComment = "sauvegarde planifiée"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a standard 5-field cron expression or a descriptor
// such as "@daily".
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, models.NewValidationError("schedule", "invalid cron expression %q: %v", expr, err)
	}
	return sched, nil
}

// Scheduler runs CreateBackup(KindScheduled) followed by ApplyRetention on
// a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	manager  *Manager
	expr     string
	schedule cron.Schedule

	mu   sync.Mutex
	cron *cron.Cron
}

// NewScheduler validates expr and binds the scheduler to manager.
func NewScheduler(manager *Manager, expr string) (*Scheduler, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &Scheduler{manager: manager, expr: expr, schedule: sched}, nil
}

// Start registers the job and starts the cron runner. ctx scopes the
// scheduled runs; cancel it or call Stop to end them.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("backup scheduler already started")
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Msg("Scheduled backup failed")
		}
	}))
	c.Start()
	s.cron = c

	logging.Info().Str("schedule", s.expr).Time("next_run", s.Next(time.Now())).Msg("Backup scheduler started")
	return nil
}

// Stop halts the runner and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	<-c.Stop().Done()
	logging.Info().Msg("Backup scheduler stopped")
	return nil
}

// RunOnce performs one scheduled backup and then applies retention.
// Retention is skipped when the backup did not succeed.
func (s *Scheduler) RunOnce(ctx context.Context) (*models.BackupRecord, error) {
	rec, err := s.manager.CreateBackup(ctx, models.KindScheduled, scheduledComment, nil)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusSuccess {
		return rec, nil
	}
	if _, err := s.manager.ApplyRetention(ctx); err != nil {
		return rec, fmt.Errorf("apply retention: %w", err)
	}
	return rec, nil
}

// Next returns the first activation after from.
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.schedule.Next(from)
}

// cronLogger routes robfig/cron's logr-style calls to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug().Fields(keysAndValues).Str("component", "cron").Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Fields(keysAndValues).Str("component", "cron").Msg(msg)
}
