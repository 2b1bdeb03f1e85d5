package replay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore answers SET NX and PING in memory so no server is dialed.
type fakeStore struct {
	mu      sync.Mutex
	now     time.Time
	expires map[string]time.Time
	ttls    map[string]time.Duration
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:     time.Unix(1700000000, 0),
		expires: make(map[string]time.Time),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeStore) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeStore) DialHook(next rdb.DialHook) rdb.DialHook { return next }

func (f *fakeStore) ProcessPipelineHook(next rdb.ProcessPipelineHook) rdb.ProcessPipelineHook {
	return next
}

func (f *fakeStore) ProcessHook(_ rdb.ProcessHook) rdb.ProcessHook {
	return func(_ context.Context, cmd rdb.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.err != nil {
			cmd.SetErr(f.err)
			return f.err
		}
		args := cmd.Args()
		switch strings.ToLower(fmt.Sprint(args[0])) {
		case "set":
			return f.set(cmd, args)
		case "ping":
			cmd.(*rdb.StatusCmd).SetVal("PONG")
			return nil
		}
		err := fmt.Errorf("unexpected command %v", args)
		cmd.SetErr(err)
		return err
	}
}

// set handles "set key value [ex|px n] nx".
func (f *fakeStore) set(cmd rdb.Cmder, args []interface{}) error {
	key := fmt.Sprint(args[1])
	var ttl time.Duration
	for i := 3; i+1 < len(args); i++ {
		unit := strings.ToLower(fmt.Sprint(args[i]))
		if unit != "ex" && unit != "px" {
			continue
		}
		n, err := strconv.ParseInt(fmt.Sprint(args[i+1]), 10, 64)
		if err != nil {
			cmd.SetErr(err)
			return err
		}
		if unit == "ex" {
			ttl = time.Duration(n) * time.Second
		} else {
			ttl = time.Duration(n) * time.Millisecond
		}
	}
	if exp, ok := f.expires[key]; ok && (exp.IsZero() || f.now.Before(exp)) {
		cmd.(*rdb.BoolCmd).SetVal(false)
		return nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = f.now.Add(ttl)
	}
	f.expires[key] = exp
	f.ttls[key] = ttl
	cmd.(*rdb.BoolCmd).SetVal(true)
	return nil
}

func newTestRedis(t *testing.T) (*Redis, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	r := NewRedis("127.0.0.1:0", "", 0)
	r.c.AddHook(store)
	t.Cleanup(func() { _ = r.Close() })
	return r, store
}

func TestRedisClaimOnce(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.Claim(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Claim(ctx, "sig-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same key must fail")

	ok, err = r.Claim(ctx, "sig-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisClaimUsesPrefixAndTTL(t *testing.T) {
	r, store := newTestRedis(t)

	ok, err := r.Claim(context.Background(), "  v0=abc  ", 10*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Contains(t, store.ttls, "ecsbot:replay:v0=abc")
	assert.Equal(t, 10*time.Minute, store.ttls["ecsbot:replay:v0=abc"])
	assert.NotContains(t, store.ttls, "v0=abc")
}

func TestRedisClaimExpires(t *testing.T) {
	r, store := newTestRedis(t)
	ctx := context.Background()

	ok, err := r.Claim(ctx, "sig-1", 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	store.advance(10 * time.Millisecond)
	ok, err = r.Claim(ctx, "sig-1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "key is still live before its ttl")

	store.advance(15 * time.Millisecond)
	ok, err = r.Claim(ctx, "sig-1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok, "key can be claimed again once expired")
}

func TestRedisClaimEmptyKey(t *testing.T) {
	r, store := newTestRedis(t)

	ok, err := r.Claim(context.Background(), "   ", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.False(t, ok)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.ttls, "no command is sent for an empty key")
}

func TestRedisClaimError(t *testing.T) {
	r, store := newTestRedis(t)
	store.err = errors.New("dial tcp: connection refused")

	ok, err := r.Claim(context.Background(), "sig-1", time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.Contains(t, err.Error(), "replay: redis setnx")
	assert.False(t, ok, "a failed store never reports a fresh claim")
}

func TestRedisPing(t *testing.T) {
	r, store := newTestRedis(t)
	require.NoError(t, r.Ping(context.Background()))

	store.err = errors.New("i/o timeout")
	err := r.Ping(context.Background())
	assert.ErrorIs(t, err, store.err)
	assert.Contains(t, err.Error(), "replay: redis ping")
}
