// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eftp-registry/internal/config"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// Tool produces and consumes backup artifacts. The Manager only records
// the outcome; the dump format belongs to the Tool.
type Tool interface {
	// RunBackup writes a new artifact and returns its path and size.
	RunBackup(ctx context.Context, kind models.BackupKind, comment string) (filePath string, size int64, err error)

	// RunRestore loads the artifact at filePath into the live database.
	RunRestore(ctx context.Context, filePath string) error
}

// Ensure BreakerTool implements Tool
var _ Tool = (*BreakerTool)(nil)

// BreakerTool wraps a Tool with a circuit breaker so a broken dump
// utility fails fast instead of being retried by every scheduled run.
type BreakerTool struct {
	tool Tool
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerTool wraps tool. The breaker opens after
// cfg.BreakerMaxFailures consecutive failures and lets a trial call through after
// cfg.BreakerTimeout.
func NewBreakerTool(tool Tool, cfg config.BackupConfig) *BreakerTool {
	name := "backup-tool"
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening backup tool circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := from.String(), to.String()
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Backup tool state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerTool{tool: tool, cb: cb, name: name}
}

// State returns the current breaker state.
func (b *BreakerTool) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerTool) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %v", models.ErrExternalToolFailure, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

type dumpResult struct {
	path string
	size int64
}

// RunBackup implements Tool.
func (b *BreakerTool) RunBackup(ctx context.Context, kind models.BackupKind, comment string) (string, int64, error) {
	res, err := b.execute(func() (interface{}, error) {
		path, size, err := b.tool.RunBackup(ctx, kind, comment)
		if err != nil {
			return nil, err
		}
		return dumpResult{path: path, size: size}, nil
	})
	if err != nil {
		return "", 0, err
	}
	r := res.(dumpResult)
	return r.path, r.size, nil
}

// RunRestore implements Tool.
func (b *BreakerTool) RunRestore(ctx context.Context, filePath string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.tool.RunRestore(ctx, filePath)
	})
	return err
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
