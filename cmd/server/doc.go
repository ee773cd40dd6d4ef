// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

/*
Package main is the entry point for the EFTP registry server.

The server keeps the national registry of technical and vocational education
establishments (EFTP) together with the RENALOC administrative hierarchy it
references, and manages database backups.

# Startup

 1. Configuration: koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog
 3. Database: SQLite with goose migrations
 4. Authentication: JWT users, badger revocation store, Casbin RBAC
 5. Backup manager: circuit-broken SQLite dump tool and optional cron scheduler
 6. Supervisor tree: suture v4, jobs and api layers

# Configuration

Common environment variables:

	DB_PATH=/data/eftp.sqlite
	BACKUP_DIR=/data/backups
	BACKUP_SCHEDULE_ENABLED=true
	BACKUP_SCHEDULE="0 2 * * *"
	AUTH_MODE=jwt            # or none for local development
	JWT_SECRET=...           # 32+ characters
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=...

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
server.shutdown_timeout and an in-flight scheduled backup is allowed to
finish.
*/
package main
