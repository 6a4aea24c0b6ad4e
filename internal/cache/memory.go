package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the in-memory cache. Least-recently-used entries
// are evicted once the capacity is reached, so a long-running process cannot
// grow without limit.
const DefaultCapacity = 4096

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a bounded, concurrency-safe in-process Cache. Expiry is absolute
// and checked on every Get; expired entries are evicted lazily on lookup or
// displaced by LRU pressure.
type Memory struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

// NewMemory returns a Memory cache holding at most capacity entries.
// A capacity of zero or less falls back to DefaultCapacity.
func NewMemory(capacity int) (*Memory, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Memory{entries: entries, now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	e, ok := m.entries.Get(key)
	if !ok {
		return "", false
	}
	if m.now().After(e.expiresAt) {
		m.entries.Remove(key)
		return "", false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) {
	m.entries.Add(key, entry{value: value, expiresAt: m.now().Add(ttl)})
}

// Len reports the number of live plus not-yet-evicted expired entries.
func (m *Memory) Len() int {
	return m.entries.Len()
}
