package access

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LookupGuard counts failed tracking lookups per client key and blocks the
// key once the limit is reached within the window.
type LookupGuard interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
}

const redisKeyPrefix = "track_fail:"

type RedisGuard struct {
	Redis       redis.UniversalClient
	MaxFailures int64
	Window      time.Duration
}

func NewRedisGuard(rdb redis.UniversalClient, maxFailures int, window time.Duration) *RedisGuard {
	return &RedisGuard{Redis: rdb, MaxFailures: int64(maxFailures), Window: window}
}

func (g *RedisGuard) Blocked(ctx context.Context, key string) (bool, error) {
	val, err := g.Redis.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, err
	}
	return n >= g.MaxFailures, nil
}

// RecordFailure increments the counter. The counter and its expiry are set in
// one MULTI/EXEC; EXPIRE NX keeps the window started by the first failure.
func (g *RedisGuard) RecordFailure(ctx context.Context, key string) error {
	_, err := g.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, redisKeyPrefix+key)
		pipe.ExpireNX(ctx, redisKeyPrefix+key, g.Window)
		return nil
	})
	return err
}

type window struct {
	count   int
	started time.Time
}

// MemoryGuard is a single-process LookupGuard. Expired windows are swept at
// most once per Window.
type MemoryGuard struct {
	mu          sync.Mutex
	failures    map[string]window
	lastSweep   time.Time
	MaxFailures int
	Window      time.Duration
	Now         func() time.Time
}

func NewMemoryGuard(maxFailures int, w time.Duration) *MemoryGuard {
	return &MemoryGuard{
		failures:    make(map[string]window),
		MaxFailures: maxFailures,
		Window:      w,
		Now:         time.Now,
	}
}

// current returns the live window for key; caller holds the lock.
func (g *MemoryGuard) current(key string) (window, bool) {
	w, ok := g.failures[key]
	if !ok {
		return window{}, false
	}
	if g.Now().Sub(w.started) >= g.Window {
		delete(g.failures, key)
		return window{}, false
	}
	return w, true
}

func (g *MemoryGuard) Blocked(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	w, ok := g.current(key)
	return ok && w.count >= g.MaxFailures, nil
}

func (g *MemoryGuard) RecordFailure(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweep()
	w, ok := g.current(key)
	if !ok {
		w = window{started: g.Now()}
	}
	w.count++
	g.failures[key] = w
	return nil
}

// sweep drops every expired window; caller holds the lock.
func (g *MemoryGuard) sweep() {
	now := g.Now()
	if now.Sub(g.lastSweep) < g.Window {
		return
	}
	g.lastSweep = now
	for key, w := range g.failures {
		if now.Sub(w.started) >= g.Window {
			delete(g.failures, key)
		}
	}
}
