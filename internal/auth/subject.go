// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package auth

import (
	"context"
	"errors"

	"github.com/tomtom215/eftp-registry/internal/models"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication; every request acts as admin.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT uses JWT Bearer tokens
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none":
		return AuthModeNone, nil
	case "jwt", "":
		return AuthModeJWT, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// Subject is the authenticated caller attached to the request context.
type Subject struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role"`

	// TokenID is the jti of the presented token, empty in none mode.
	TokenID   string `json:"-"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// UserRef returns a pointer suitable for nullable user references, or nil
// when the subject is not backed by a stored user.
func (s *Subject) UserRef() *int64 {
	if s == nil || s.UserID == 0 {
		return nil
	}
	id := s.UserID
	return &id
}

// SubjectFromClaims builds a Subject from validated claims.
func SubjectFromClaims(c *Claims) *Subject {
	s := &Subject{
		UserID:   c.UserID(),
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Unix()
	}
	return s
}

// anonymousAdmin is used when authentication is disabled.
var anonymousAdmin = Subject{Username: "anonymous", Role: models.RoleAdmin}

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// ContextWithSubject stores s in ctx.
func ContextWithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// SubjectFromContext returns the request subject, or nil.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectContextKey).(*Subject)
	return s
}
