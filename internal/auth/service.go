// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/metrics"
)

// ErrTokenRevoked indicates a token that was logged out.
var ErrTokenRevoked = errors.New("token revoked")

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Service ties together the user store, token issuing and revocation.
type Service struct {
	users   *UserStore
	jwt     *JWTManager
	revoked RevocationStore
}

// NewService creates a Service.
func NewService(users *UserStore, jwt *JWTManager, revoked RevocationStore) *Service {
	return &Service{users: users, jwt: jwt, revoked: revoked}
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.AuthAttempts.WithLabelValues("invalid_credentials").Inc()
			logging.Ctx(ctx).Warn().Str("username", username).Msg("Login failed")
		} else {
			metrics.AuthAttempts.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	token, claims, err := s.jwt.GenerateToken(user)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Info().Str("username", user.Username).Str("role", user.Role).Msg("Login succeeded")

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Verify validates a token and rejects revoked ones.
func (s *Service) Verify(ctx context.Context, token string) (*Subject, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return SubjectFromClaims(claims), nil
}

// Logout revokes the subject's token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, subject *Subject) error {
	if subject == nil || subject.TokenID == "" {
		return nil
	}
	ttl := time.Until(time.Unix(subject.ExpiresAt, 0))
	if err := s.revoked.Revoke(ctx, subject.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logging.Ctx(ctx).Info().Str("username", subject.Username).Msg("Logged out")
	return nil
}

// Users exposes the user store for seeding.
func (s *Service) Users() *UserStore {
	return s.users
}
