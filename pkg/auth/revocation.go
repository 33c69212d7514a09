package auth

import (
	"sync"
	"time"
)

// sweepInterval bounds how often Add performs an opportunistic sweep.
const sweepInterval = 5 * time.Minute

// RevocationSet tracks token IDs invalidated before their natural expiry.
//
// Each entry carries the token's own expiry, so entries for tokens that
// could no longer validate anyway are swept out instead of accumulating for
// the lifetime of the process. Sweeping happens opportunistically on Add
// and can be forced with Sweep.
type RevocationSet struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	lastSweep time.Time
}

// NewRevocationSet creates an empty revocation set.
func NewRevocationSet() *RevocationSet {
	return &RevocationSet{
		entries:   make(map[string]time.Time),
		lastSweep: time.Now(),
	}
}

// Add marks a token ID as revoked until the token's own expiry. Adding an
// already-revoked ID is a no-op.
func (s *RevocationSet) Add(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
	}
	s.entries[jti] = expiresAt
}

// Contains reports whether a token ID has been revoked.
func (s *RevocationSet) Contains(jti string) bool {
	if jti == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[jti]
	if !ok {
		return false
	}
	// An expired entry is dead weight, not an active revocation: the token
	// itself already fails expiry checks.
	if time.Now().After(expiresAt) {
		delete(s.entries, jti)
		return false
	}
	return true
}

// Sweep removes entries whose tokens have expired and returns how many
// were removed.
func (s *RevocationSet) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// Len returns the number of live entries.
func (s *RevocationSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *RevocationSet) sweepLocked(now time.Time) int {
	removed := 0
	for jti, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, jti)
			removed++
		}
	}
	s.lastSweep = now
	return removed
}
