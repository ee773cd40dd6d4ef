// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

// Package services adapts the registry's long-running components to the
// suture.Service interface.
//
//   - HTTPServerService: ListenAndServe/Shutdown to Serve(ctx)
//   - BackupSchedulerService: Start/Stop to Serve(ctx)
//
// Each wrapper returns ctx.Err() on a clean shutdown and a wrapped error
// otherwise, which suture counts toward its failure threshold.
package services
