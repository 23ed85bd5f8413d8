package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnknownState reports a callback whose state value has no pending
// login attempt: forged, replayed, expired, or lost to a restart.
var ErrUnknownState = errors.New("service: unknown login state")

// DefaultLoginStateTTL bounds how long a user may sit on the provider's
// login page before the attempt is abandoned.
const DefaultLoginStateTTL = 10 * time.Minute

// LoginStateStore holds the nonce of each in-flight login attempt, keyed
// by its CSRF state value. Entries are single use: Take removes the
// entry it returns. Keying by state lets any number of logins proceed
// concurrently without racing on shared challenge data.
type LoginStateStore interface {
	Put(ctx context.Context, state, nonce string) error
	Take(ctx context.Context, state string) (nonce string, err error)
}

type memoryEntry struct {
	nonce   string
	expires time.Time
}

// MemoryStateStore is the in-process LoginStateStore used by
// single-replica deployments.
type MemoryStateStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultLoginStateTTL
	}
	return &MemoryStateStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStateStore) Put(ctx context.Context, state, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state] = memoryEntry{nonce: nonce, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStateStore) Take(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return "", ErrUnknownState
	}
	delete(s.entries, state)

	if time.Now().After(entry.expires) {
		return "", ErrUnknownState
	}
	return entry.nonce, nil
}

// Sweep drops expired entries and returns how many were removed. Called
// periodically by the housekeeping service; abandoned logins would
// otherwise sit in the map until process restart.
func (s *MemoryStateStore) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for state, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, state)
			removed++
		}
	}
	return removed
}
