package replay

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a process-local guard backed by go-cache.
type Memory struct{ c *gocache.Cache }

// NewMemory creates a guard whose entries default to ttl and are swept every minute.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, time.Minute)}
}

// Claim stores key if it is not already present. go-cache's Add is atomic,
// so concurrent deliveries of the same key cannot both succeed.
func (m *Memory) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	if err := m.c.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int { return m.c.ItemCount() }
