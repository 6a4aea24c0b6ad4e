// Package cache provides the TTL-keyed decision cache shared by access
// checks, screen-time queries, and the crypto gateway. One instance serves
// all purposes; key prefixes keep the TTL classes from colliding.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a read-through cache mapping a string key to a string value with
// a per-entry absolute expiry. There is no explicit invalidation: staleness
// is bounded solely by the TTL chosen at Set time.
type Cache interface {
	// Get returns the value for key, or found=false if the key is absent
	// or its entry has expired.
	Get(ctx context.Context, key string) (value string, found bool)

	// Set unconditionally overwrites any existing entry for key, with
	// expiry now+ttl.
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// Key builds a namespaced cache key, e.g. Key("access", memberID, app).
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

const (
	// True and False are the canonical encodings for cached boolean
	// decisions, shared by all backends.
	True  = "1"
	False = "0"
)
