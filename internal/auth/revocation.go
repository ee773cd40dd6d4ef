// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrRevocationStoreClosed indicates the store has been closed.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti was revoked and has not expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Close releases the underlying database.
	Close() error
}

// BadgerRevocationStore keeps revoked jtis in BadgerDB with a TTL equal to
// the token's remaining lifetime, so entries vanish when the token would
// have expired anyway.
type BadgerRevocationStore struct {
	db     *badger.DB
	prefix []byte

	mu     sync.RWMutex
	closed bool
}

// OpenBadgerRevocationStore opens a store in dir. An empty dir keeps the
// store in memory.
func OpenBadgerRevocationStore(dir string) (*BadgerRevocationStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open revocation store: %w", err)
	}
	return &BadgerRevocationStore{db: db, prefix: []byte("revoked:")}, nil
}

func (s *BadgerRevocationStore) key(jti string) []byte {
	return append(append([]byte(nil), s.prefix...), jti...)
}

func (s *BadgerRevocationStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Revoke implements RevocationStore.
func (s *BadgerRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if s.isClosed() {
		return ErrRevocationStoreClosed
	}
	if ttl <= 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.key(jti), []byte{1}).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// IsRevoked implements RevocationStore.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.isClosed() {
		return false, ErrRevocationStoreClosed
	}
	revoked := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.key(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		revoked = true
		return nil
	})
	return revoked, err
}

// Close implements RevocationStore.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
