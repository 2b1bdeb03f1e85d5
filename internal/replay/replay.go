// Package replay remembers recently accepted webhook signatures so a captured
// request cannot be delivered twice inside the freshness window.
package replay

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned when Claim is called without a key.
var ErrEmptyKey = errors.New("replay: key is required")

// Guard claims keys for a TTL. Claim returns false when the key was already
// claimed and has not expired.
type Guard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Nop accepts every key. Used when replay protection is disabled.
type Nop struct{}

// Claim always succeeds.
func (Nop) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }
