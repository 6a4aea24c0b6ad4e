package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryWithClock(t *testing.T, capacity int) (*Memory, *time.Time) {
	t.Helper()
	m, err := NewMemory(capacity)
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemory_GetMissOnAbsentKey(t *testing.T) {
	m, _ := newMemoryWithClock(t, 10)

	_, found := m.Get(context.Background(), "access:1:game")
	assert.False(t, found)
}

func TestMemory_SetThenGet(t *testing.T) {
	m, _ := newMemoryWithClock(t, 10)
	ctx := context.Background()

	m.Set(ctx, "access:1:game", True, time.Minute)

	v, found := m.Get(ctx, "access:1:game")
	require.True(t, found)
	assert.Equal(t, True, v)
}

func TestMemory_EntryExpires(t *testing.T) {
	m, now := newMemoryWithClock(t, 10)
	ctx := context.Background()

	m.Set(ctx, "k", "v", time.Minute)

	*now = now.Add(59 * time.Second)
	_, found := m.Get(ctx, "k")
	assert.True(t, found, "entry should still be live just before the TTL")

	*now = now.Add(2 * time.Second)
	_, found = m.Get(ctx, "k")
	assert.False(t, found, "entry must be treated as absent after the TTL")
}

func TestMemory_ExpiredEntryIsEvictedOnLookup(t *testing.T) {
	m, now := newMemoryWithClock(t, 10)
	ctx := context.Background()

	m.Set(ctx, "k", "v", time.Minute)
	*now = now.Add(2 * time.Minute)

	m.Get(ctx, "k")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_SetOverwritesAndRefreshesExpiry(t *testing.T) {
	m, now := newMemoryWithClock(t, 10)
	ctx := context.Background()

	m.Set(ctx, "k", "old", time.Minute)
	*now = now.Add(50 * time.Second)
	m.Set(ctx, "k", "new", time.Minute)

	*now = now.Add(30 * time.Second)
	v, found := m.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, "new", v)
}

func TestMemory_CapacityBoundsGrowth(t *testing.T) {
	m, _ := newMemoryWithClock(t, 8)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Hour)
	}
	assert.LessOrEqual(t, m.Len(), 8)

	// The most recently written entries survive.
	_, found := m.Get(ctx, "k99")
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "access:42:Minecraft", Key("access", "42", "Minecraft"))
}
