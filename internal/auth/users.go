// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// bcryptCost balances login latency against brute-force cost.
const bcryptCost = 12

const minPasswordLength = 8

// ErrInvalidCredentials indicates an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore persists operator accounts.
type UserStore struct {
	db   *sql.DB
	cost int
	now  func() time.Time
}

// NewUserStore creates a UserStore on db.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, cost: bcryptCost, now: func() time.Time { return time.Now().UTC() }}
}

// Create hashes password and inserts a user.
func (s *UserStore) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("username", "is required")
	}
	if len(password) < minPasswordLength {
		return nil, models.NewValidationError("password", "must be at least %d characters", minPasswordLength)
	}
	switch role {
	case models.RoleAdmin, models.RoleEditor, models.RoleViewer:
	default:
		return nil, models.NewValidationError("role", "unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{Username: username, PasswordHash: string(hash), Role: role, CreatedAt: s.now()}
	query, args, err := database.Builder.Insert("users").
		Columns("username", "password_hash", "role", "created_at").
		Values(u.Username, u.PasswordHash, u.Role, u.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewValidationError("username", "%q already exists", username)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

// GetByUsername returns ErrNotFound for unknown users.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := database.Builder.
		Select("id", "username", "password_hash", "role", "created_at").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	u := &models.User{}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Authenticate checks a password against the stored bcrypt hash.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		// Unknown users still pay for one comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates the admin account when username does not exist.
// An existing account is left untouched.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	if username == "" {
		return false, nil
	}
	_, err = s.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, username, password, models.RoleAdmin); err != nil {
		return false, fmt.Errorf("seed admin user: %w", err)
	}
	logging.Info().Str("username", username).Msg("Seeded admin user")
	return true, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("eftp-registry-dummy"), bcryptCost)
