// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

/*
Package auth provides operator accounts, token issuing and authentication
middleware.

Key Components:

  - UserStore: accounts in the relational store with bcrypt password hashes
  - JWTManager: HS256 tokens carrying username, role and a jti
  - BadgerRevocationStore: logged-out jtis kept in BadgerDB until expiry
  - Service: Login, Verify and Logout
  - Middleware: puts the authenticated Subject in the request context

Authentication Modes (AUTH_MODE):

 1. jwt (default): Bearer token in the Authorization header or the
    "token" cookie.
 2. none: every request acts as an anonymous admin. Rejected by config
    validation in production.

Usage Example:

	users := auth.NewUserStore(db)
	jwtManager, _ := auth.NewJWTManager(&cfg.Security)
	revoked, _ := auth.OpenBadgerRevocationStore(cfg.Security.RevocationStorePath)
	service := auth.NewService(users, jwtManager, revoked)

	r.Group(func(r chi.Router) {
	    r.Use(auth.NewMiddleware(service, auth.AuthModeJWT).Authenticate)
	    // protected routes
	})
*/
package auth
