// Package cache stores rendered diagram payloads between runs.
//
// The pipeline itself is pure; caching only saves the CLI from re-rendering
// macros whose source has not changed. Entries are keyed by a hash of the
// macro source and the options that influence the output, see [Keyer].
//
// # Backends
//
//   - [NullCache]: stores nothing, used with --no-cache
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, e.g. for CI runners
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLPayload is the lifetime of an encoded diagram.
	TTLPayload = 30 * 24 * time.Hour

	// TTLTree is the lifetime of a lowered diagram tree.
	TTLTree = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses.
func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(context.Context, string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
