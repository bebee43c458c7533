package repositories

import (
	"context"
	"sync"
	"time"

	"foodgram/internal/models"
)

// TagCache keeps the full tag list between requests.
type TagCache interface {
	// GetTags returns the cached list and whether it was present.
	GetTags(ctx context.Context) ([]models.Tag, bool, error)
	SetTags(ctx context.Context, tags []models.Tag) error
	Invalidate(ctx context.Context) error
}

// MemoryTagCache is an in-memory implementation of TagCache.
type MemoryTagCache struct {
	tags      []models.Tag
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
	mu        sync.RWMutex
}

// NewMemoryTagCache creates a new MemoryTagCache whose entries live for ttl.
func NewMemoryTagCache(ttl time.Duration) *MemoryTagCache {
	return &MemoryTagCache{
		ttl: ttl,
		now: time.Now,
	}
}

// GetTags returns a copy of the cached tags if they have not expired.
func (c *MemoryTagCache) GetTags(_ context.Context) ([]models.Tag, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.tags == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	tags := make([]models.Tag, len(c.tags))
	copy(tags, c.tags)
	return tags, true, nil
}

// SetTags replaces the cached list.
func (c *MemoryTagCache) SetTags(_ context.Context, tags []models.Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tags = make([]models.Tag, len(tags))
	copy(c.tags, tags)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached list.
func (c *MemoryTagCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tags = nil
	return nil
}
