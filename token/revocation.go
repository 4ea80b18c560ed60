package token

import (
	"context"
	"sync"
	"time"
)

// familyPrefix marks the derived family revocation id.
const familyPrefix = "fam:"

// FamilyID derives the family marker recorded when a revocation covers the
// whole token family descended from jti.
func FamilyID(jti string) string {
	return familyPrefix + jti
}

// RevocationStore records revoked token ids and answers membership queries.
// Persistence belongs to the caller; this package ships a process-local
// implementation and the root package a Redis-backed one.
type RevocationStore interface {
	Revoke(ctx context.Context, id string, at time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// MemoryRevocationStore is a concurrency-safe in-process RevocationStore
// for tests and single-node deployments.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryRevocationStore returns an empty store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First revocation timestamp wins; revoking twice is a no-op.
	if _, exists := s.revoked[id]; !exists {
		s.revoked[id] = at
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, revoked := s.revoked[id]
	return revoked, nil
}

// RevokedAt reports when id was revoked, if ever.
func (s *MemoryRevocationStore) RevokedAt(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.revoked[id]
	return at, ok
}
