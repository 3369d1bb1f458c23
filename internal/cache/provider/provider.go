// Package provider defines the byte-store abstraction consumed by the cache
// gateway.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended or
// appended metadata, no re-encoding, no mutation).
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. A non-positive TTL means the
	// backend's default expiry applies.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Ping reports whether the backend is currently reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
