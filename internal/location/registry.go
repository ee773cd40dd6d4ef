// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

/*
Package location maintains the RENALOC reference registry: the four-level
administrative hierarchy Region > Department > Commune > QuarterVillage.

Deletion Policy:
  - Descendants are removed by ON DELETE CASCADE in the schema
  - A node is protected while any establishment references it or one of
    its descendants (region, department or commune references)
  - QuarterVillage references on establishments are cleared, never protecting

Every mutation runs inside a transaction. Observer events are queued on the
transaction and delivered only after commit, so a rolled back batch emits
nothing.
*/
package location

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/eftp-registry/internal/database"
	"github.com/tomtom215/eftp-registry/internal/models"
	"github.com/tomtom215/eftp-registry/internal/validation"
)

// MaxNameLength bounds the nom column.
const MaxNameLength = 100

// Input is the payload of CreateOrUpdate.
type Input struct {
	Code       string             `json:"code"`
	Name       string             `json:"nom"`
	ParentCode string             `json:"parent_code,omitempty"`
	Type       models.CommuneType `json:"type,omitempty"`
}

// Registry is the location registry service.
type Registry struct {
	db       *sql.DB
	observer Observer
	now      func() time.Time
}

// NewRegistry creates a registry. A nil observer is replaced by a no-op.
func NewRegistry(db *sql.DB, observer Observer) *Registry {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Registry{
		db:       db,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Tx is a transaction-scoped view of the registry.
type Tx struct {
	r       *Registry
	q       database.Querier
	pending []event
}

type event struct {
	node    *models.Location
	created bool
	deleted bool
}

// InTx runs fn in a single transaction. Observer events raised by fn are
// delivered after a successful commit.
func (r *Registry) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	var pending []event
	err := database.WithTx(ctx, r.db, func(sqlTx *sql.Tx) error {
		tx := &Tx{r: r, q: sqlTx}
		if err := fn(tx); err != nil {
			return err
		}
		pending = tx.pending
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range pending {
		if ev.deleted {
			r.observer.NodeDeleted(ctx, ev.node)
		} else {
			r.observer.NodeSaved(ctx, ev.node, ev.created)
		}
	}
	return nil
}

// CreateOrUpdate upserts a node by code within its level.
func (r *Registry) CreateOrUpdate(ctx context.Context, level models.Level, in Input) (*models.Location, bool, error) {
	var (
		node    *models.Location
		created bool
	)
	err := r.InTx(ctx, func(tx *Tx) error {
		var err error
		node, created, err = tx.CreateOrUpdate(ctx, level, in)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return node, created, nil
}

// Delete removes a node and, by cascade, its descendants.
func (r *Registry) Delete(ctx context.Context, level models.Level, code string) error {
	return r.InTx(ctx, func(tx *Tx) error {
		return tx.Delete(ctx, level, code)
	})
}

// Get returns a single node.
func (r *Registry) Get(ctx context.Context, level models.Level, code string) (*models.Location, error) {
	if !level.Valid() {
		return nil, models.NewValidationError("level", "unknown level %q", string(level))
	}
	return getByCode(ctx, r.db, level, code)
}

// ListChildren returns the nodes of level whose parent has parentCode,
// ordered by name. Regions ignore parentCode; an empty parentCode on the
// lower levels lists the whole level.
func (r *Registry) ListChildren(ctx context.Context, level models.Level, parentCode string) ([]*models.Location, error) {
	if !level.Valid() {
		return nil, models.NewValidationError("level", "unknown level %q", string(level))
	}

	parent, hasParent := level.Parent()
	if !hasParent || parentCode == "" {
		return list(ctx, r.db, level, nil)
	}

	p, err := getByCode(ctx, r.db, parent, parentCode)
	if err != nil {
		return nil, err
	}
	return list(ctx, r.db, level, &p.ID)
}

// CreateOrUpdate upserts within the transaction.
func (tx *Tx) CreateOrUpdate(ctx context.Context, level models.Level, in Input) (*models.Location, bool, error) {
	in, err := normalize(level, in)
	if err != nil {
		return nil, false, err
	}

	var parentID int64
	if parent, ok := level.Parent(); ok {
		p, err := getByCode(ctx, tx.q, parent, in.ParentCode)
		if err != nil {
			if isNotFound(err) {
				return nil, false, models.NewValidationError(level.ImportParentColumn(),
					"%s %s does not exist", parent.Label(), in.ParentCode)
			}
			return nil, false, err
		}
		parentID = p.ID
	}

	now := tx.r.now()
	existing, err := getByCode(ctx, tx.q, level, in.Code)
	created := false
	switch {
	case err == nil:
		err = update(ctx, tx.q, level, existing.ID, in.Name, parentID, in.Type, now)
	case isNotFound(err):
		created = true
		err = insert(ctx, tx.q, level, in.Code, in.Name, parentID, in.Type, now)
	}
	if err != nil {
		return nil, false, err
	}

	node, err := getByCode(ctx, tx.q, level, in.Code)
	if err != nil {
		return nil, false, err
	}
	tx.pending = append(tx.pending, event{node: node, created: created})
	return node, created, nil
}

// Delete removes a node within the transaction, refusing protected nodes.
func (tx *Tx) Delete(ctx context.Context, level models.Level, code string) error {
	if !level.Valid() {
		return models.NewValidationError("level", "unknown level %q", string(level))
	}

	node, err := getByCode(ctx, tx.q, level, code)
	if err != nil {
		return err
	}

	refs, err := countReferences(ctx, tx.q, level, node.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &models.ProtectedError{Entity: level.Label(), Code: code, References: refs}
	}

	if err := deleteByID(ctx, tx.q, level, node.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", models.ErrReferencedEntityProtected, err)
		}
		return err
	}
	tx.pending = append(tx.pending, event{node: node, deleted: true})
	return nil
}

func normalize(level models.Level, in Input) (Input, error) {
	if !level.Valid() {
		return in, models.NewValidationError("level", "unknown level %q", string(level))
	}

	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.ParentCode = strings.TrimSpace(in.ParentCode)

	if len(in.Code) != level.CodeLength() || !validation.IsDigits(in.Code) {
		return in, models.NewValidationError("code",
			"%s code must be exactly %d digits, got %q", level.Label(), level.CodeLength(), in.Code)
	}
	if in.Name == "" {
		return in, models.NewValidationError("nom", "name is required")
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLength {
		return in, models.NewValidationError("nom", "name exceeds %d characters", MaxNameLength)
	}

	if parent, ok := level.Parent(); ok {
		if len(in.ParentCode) != parent.CodeLength() || !validation.IsDigits(in.ParentCode) {
			return in, models.NewValidationError(level.ImportParentColumn(),
				"%s code must be exactly %d digits, got %q", parent.Label(), parent.CodeLength(), in.ParentCode)
		}
	} else {
		in.ParentCode = ""
	}

	if level == models.LevelCommune {
		in.Type = models.CommuneType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
		if in.Type == "" {
			in.Type = models.CommuneRural
		}
		if !in.Type.Valid() {
			return in, models.NewValidationError("type", "commune type must be URBAINE or RURALE, got %q", string(in.Type))
		}
	} else {
		in.Type = ""
	}
	return in, nil
}
