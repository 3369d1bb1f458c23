// Package cache implements a fail-open gateway over an optional, unreliable
// cache backend.
//
// The gateway never returns an error to callers: a backend fault on any
// operation is logged at warn level and downgraded to a miss (Get) or a no-op
// (Set, Delete). Callers treat the cache purely as an optimization; its
// absence must be invisible to correctness.
//
// Components:
//   - provider.Provider: byte store with TTL (Redis over the network, or
//     in-process bigcache).
//   - codec.Codec[V]: (de)serializes snapshots V <-> []byte at the call site.
package cache

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/bookreviewd/internal/cache/provider"
)

// Status values reported by the health endpoint.
const (
	StatusNotConfigured = "not configured"
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
)

// Gateway wraps an optional cache backend so calling code cannot be broken by
// its absence or failure. A nil provider means caching is disabled; every
// operation then becomes a no-op/miss.
type Gateway struct {
	provider pr.Provider
	log      Logger

	mu        sync.RWMutex
	available bool
}

// New builds a gateway over p. p may be nil when no backend is configured.
func New(p pr.Provider, log Logger) *Gateway {
	if log == nil {
		log = NopLogger{}
	}
	return &Gateway{provider: p, log: log}
}

// Configured reports whether a backend was supplied at construction.
func (g *Gateway) Configured() bool { return g.provider != nil }

// Connect probes the backend once at process start. Failure is non-fatal: the
// gateway stays usable and every operation degrades to a miss/no-op until the
// backend comes back.
func (g *Gateway) Connect(ctx context.Context) {
	if g.provider == nil {
		g.log.Warn("cache backend not configured, running without cache", nil)
		return
	}
	if err := g.provider.Ping(ctx); err != nil {
		g.setAvailable(false)
		g.log.Warn("cache backend unreachable, running without cache", Fields{"err": err.Error()})
		return
	}
	g.setAvailable(true)
	g.log.Info("cache backend connected", nil)
}

// Available returns the best-known availability from the last backend
// interaction. Diagnostics only; operations never gate on it.
func (g *Gateway) Available() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.available
}

// Status reports the live backend state for health reporting.
func (g *Gateway) Status(ctx context.Context) string {
	if g.provider == nil {
		return StatusNotConfigured
	}
	if err := g.provider.Ping(ctx); err != nil {
		g.setAvailable(false)
		return StatusDisconnected
	}
	g.setAvailable(true)
	return StatusConnected
}

// Get returns the cached value for key. Any backend fault is treated
// identically to a miss after a warn log.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, bool) {
	if g.provider == nil {
		return nil, false
	}
	raw, ok, err := g.provider.Get(ctx, key)
	if err != nil {
		g.setAvailable(false)
		g.log.Warn("cache get failed, treating as miss", Fields{"key": key, "err": err.Error()})
		return nil, false
	}
	g.setAvailable(true)
	if !ok {
		return nil, false
	}
	return raw, true
}

// Set writes value under key with the given TTL. A failed cache write never
// fails the calling operation.
func (g *Gateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if g.provider == nil {
		return
	}
	if err := g.provider.Set(ctx, key, value, ttl); err != nil {
		g.setAvailable(false)
		g.log.Warn("cache set failed", Fields{"key": key, "err": err.Error()})
		return
	}
	g.setAvailable(true)
	g.log.Debug("cache set", Fields{"key": key, "ttl": ttl.String()})
}

// Delete removes key eagerly (invalidation). Safe to issue when disabled; it
// is simply a no-op then.
func (g *Gateway) Delete(ctx context.Context, key string) {
	if g.provider == nil {
		return
	}
	if err := g.provider.Del(ctx, key); err != nil {
		g.setAvailable(false)
		g.log.Warn("cache delete failed", Fields{"key": key, "err": err.Error()})
		return
	}
	g.setAvailable(true)
	g.log.Debug("cache invalidated", Fields{"key": key})
}

// Close releases the backend. No-op when not configured.
func (g *Gateway) Close(ctx context.Context) error {
	if g.provider == nil {
		return nil
	}
	return g.provider.Close(ctx)
}

func (g *Gateway) setAvailable(v bool) {
	g.mu.Lock()
	g.available = v
	g.mu.Unlock()
}
