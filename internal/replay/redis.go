package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ecsbot:replay:"

// Redis shares claimed keys between instances through SETNX.
type Redis struct {
	c      *rdb.Client
	prefix string
}

// NewRedis connects lazily to addr; no round trip is made until the first Claim.
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, Password: password, DB: db}),
		prefix: defaultRedisPrefix,
	}
}

// Claim sets prefix+key only if it does not exist yet.
func (r *Redis) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrEmptyKey
	}
	ok, err := r.c.SetNX(ctx, r.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay: redis setnx: %w", err)
	}
	return ok, nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("replay: redis ping: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis) Close() error { return r.c.Close() }
