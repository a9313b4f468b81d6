// Package cache stores extracted graphs and computed layouts so repeated runs
// over the same document skip the pipeline.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared between server instances
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the inputs that determine an
// entry; [ScopedKeyer] adds a namespace prefix.
//
// A cache failure is never fatal to callers: the pipeline treats every error
// as a miss and recomputes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry
	// returns ok=false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Entry lifetimes. A graph depends only on the source bytes, so it may live
// long; layouts and exports are cheaper to rebuild.
const (
	TTLGraph  = 30 * 24 * time.Hour
	TTLLayout = 7 * 24 * time.Hour
	TTLExport = 24 * time.Hour
)
