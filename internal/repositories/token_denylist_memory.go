package repositories

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist records revoked token IDs until the tokens would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryTokenDenylist is an in-memory implementation of TokenDenylist.
type MemoryTokenDenylist struct {
	revoked map[string]time.Time
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryTokenDenylist creates a new instance of MemoryTokenDenylist.
func NewMemoryTokenDenylist() *MemoryTokenDenylist {
	return &MemoryTokenDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks tokenID as revoked for ttl. Expired entries are pruned on the way.
func (d *MemoryTokenDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, until := range d.revoked {
		if !now.Before(until) {
			delete(d.revoked, id)
		}
	}
	d.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID is currently revoked.
func (d *MemoryTokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	until, ok := d.revoked[tokenID]
	return ok && d.now().Before(until), nil
}
