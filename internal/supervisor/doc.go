// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

/*
Package supervisor runs the registry's long-lived services under a suture v4
supervision tree.

	RootSupervisor ("eftp-registry")
	├── JobsSupervisor ("jobs-layer")
	│   └── BackupSchedulerService (when backup.schedule is set)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's failure decay and backoff. Supervisor
events are logged through sutureslog, which writes to the zerolog-backed
slog.Logger from logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddJobService(services.NewBackupSchedulerService(scheduler))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

Cancel ctx (for example from signal.NotifyContext) to stop the tree. Services
still running after ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
