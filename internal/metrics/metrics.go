// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package metrics holds the Prometheus collectors for the registry service.
//
// Collectors are registered on the default registry via promauto and served
// by promhttp at /metrics. Instrumentation covers:
//   - API endpoint latency and throughput
//   - Backup and restore outcomes, durations and sizes
//   - Location registry mutations and bulk imports
//   - Circuit breaker state around the dump tool
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backups_total",
			Help: "Total number of finalized backups",
		},
		[]string{"kind", "status"},
	)

	BackupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Duration of backup creation in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		},
	)

	BackupLastSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_size_bytes",
			Help: "Size of the most recent successful backup",
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp",
			Help: "Unix timestamp of the last successful backup",
		},
	)

	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restores_total",
			Help: "Total number of finalized restores",
		},
		[]string{"status"},
	)

	BackupsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backups_pruned_total",
			Help: "Total number of backups removed by retention",
		},
	)

	// Location Registry Metrics
	LocationMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_mutations_total",
			Help: "Total number of location registry mutations",
		},
		[]string{"level", "op"}, // op: "create", "update", "delete"
	)

	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_import_rows_total",
			Help: "Total number of rows committed by bulk imports",
		},
		[]string{"level"},
	)

	ImportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_import_failures_total",
			Help: "Total number of rolled back bulk imports",
		},
		[]string{"level"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"}, // "success", "invalid_credentials", "error"
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"object", "action", "result"}, // result: "allowed", "denied", "error"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackup records a finalized backup.
func RecordBackup(kind, status string, size int64, duration time.Duration) {
	BackupsTotal.WithLabelValues(kind, status).Inc()
	BackupDuration.Observe(duration.Seconds())
	if status == "SUCCESS" {
		BackupLastSizeBytes.Set(float64(size))
		BackupLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRestore records a finalized restore.
func RecordRestore(status string) {
	RestoresTotal.WithLabelValues(status).Inc()
}

// RecordLocationMutation records a create, update or delete on a level.
func RecordLocationMutation(level, op string) {
	LocationMutations.WithLabelValues(level, op).Inc()
}

// RecordImport records the outcome of a bulk import.
func RecordImport(level string, rows int, err error) {
	if err != nil {
		ImportFailures.WithLabelValues(level).Inc()
		return
	}
	ImportRows.WithLabelValues(level).Add(float64(rows))
}
