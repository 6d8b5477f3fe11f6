// Package noncestore provides the nonce lifecycle stores.
package noncestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// nonceBytes gives 256 bits of entropy per nonce value.
const nonceBytes = 32

// MemoryStore is an in-memory implementation of the NonceStore interface.
// It serializes Consume with a mutex, which satisfies the single-use
// requirement for a single-node deployment only; multi-instance setups
// need the Redis store.
type MemoryStore struct {
	nonces map[string]*core.Nonce
	mu     sync.Mutex
}

// NewMemoryStore creates a new in-memory nonce store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nonces: make(map[string]*core.Nonce),
	}
}

// Generate creates and persists a fresh nonce, sweeping expired records
// while it holds the lock.
func (s *MemoryStore) Generate(ctx context.Context, address string) (core.Nonce, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return core.Nonce{}, err
	}

	now := time.Now()
	nonce := core.Nonce{
		Value:     hex.EncodeToString(buf),
		Address:   address,
		CreatedAt: now,
		ExpiresAt: now.Add(core.NonceTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now)
	stored := nonce
	s.nonces[nonce.Value] = &stored

	return nonce, nil
}

// Validate reports whether the nonce exists, is unused and within TTL.
func (s *MemoryStore) Validate(ctx context.Context, value string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nonces[value]
	if !ok || n.Used || n.Expired(now) {
		return false, nil
	}
	return true, nil
}

// Consume transitions the nonce to used. The check and the write happen
// under one lock, so exactly one of any set of concurrent callers wins.
func (s *MemoryStore) Consume(ctx context.Context, value string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nonces[value]
	if !ok || n.Used || n.Expired(usedAt) {
		return false, nil
	}

	n.Used = true
	n.UsedAt = usedAt
	return true, nil
}

// Bound returns the address recorded at generation, if any.
func (s *MemoryStore) Bound(ctx context.Context, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nonces[value]
	if !ok {
		return "", nil
	}
	return n.Address, nil
}

// sweep drops records past TTL; callers must hold the lock.
func (s *MemoryStore) sweep(now time.Time) {
	for value, n := range s.nonces {
		if n.Expired(now) {
			delete(s.nonces, value)
		}
	}
}

var _ ports.NonceStore = (*MemoryStore)(nil)
