// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package middleware provides chi-compatible HTTP middleware shared by the
// API router: request id propagation and Prometheus instrumentation.
//
// Order matters: RequestID must run before PrometheusMetrics so slow
// request warnings carry the request id.
package middleware
