package auth

import (
	"sync"
	"time"
)

// Revocations records signed-out tokens until their own expiry passes.
type Revocations struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	onSize  func(int)
}

// NewRevocations returns an empty registry. onSize, when set, is called with
// the entry count after every change, under the registry lock, so it must not
// call back into the registry.
func NewRevocations(onSize func(int)) *Revocations {
	return &Revocations{
		entries: make(map[string]time.Time),
		onSize:  onSize,
	}
}

// Revoke marks token as revoked until expiresAt. Revoking twice keeps the
// later expiry.
func (r *Revocations) Revoke(token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.entries[token]; !ok || expiresAt.After(current) {
		r.entries[token] = expiresAt
	}
	r.report()
}

// IsRevoked reports whether token has been revoked.
func (r *Revocations) IsRevoked(token string) bool {
	r.mu.RLock()
	_, ok := r.entries[token]
	r.mu.RUnlock()
	return ok
}

// Sweep drops entries whose expiry is at or before now and returns how many
// were removed. Those tokens already fail verification on their own.
func (r *Revocations) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, token)
			removed++
		}
	}
	if removed > 0 {
		r.report()
	}
	return removed
}

// Len returns the number of tracked tokens.
func (r *Revocations) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// report must be called with mu held.
func (r *Revocations) report() {
	if r.onSize != nil {
		r.onSize(len(r.entries))
	}
}
