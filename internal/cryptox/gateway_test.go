package cryptox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthgate/hearthgate/internal/cache"
)

func newGateway(t *testing.T, c cache.Cache) *Gateway {
	t.Helper()
	g, err := New("household-secret", c, nil, 30*time.Minute, 10*time.Minute)
	require.NoError(t, err)
	return g
}

func TestGateway_RoundTrip(t *testing.T) {
	g := newGateway(t, nil)
	ctx := context.Background()

	for _, s := range []string{"", "a", "hello world", `{"member":"sarah","decision":true}`, "пример текста"} {
		ct, err := g.Encrypt(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, s, g.Decrypt(ctx, ct))
	}
}

func TestGateway_FreshNonceWithoutCache(t *testing.T) {
	g := newGateway(t, nil)
	ctx := context.Background()

	a, err := g.Encrypt(ctx, "same payload")
	require.NoError(t, err)
	b, err := g.Encrypt(ctx, "same payload")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each call must use a fresh nonce")
}

func TestGateway_CacheReturnsIdenticalCiphertext(t *testing.T) {
	mem, err := cache.NewMemory(16)
	require.NoError(t, err)
	g := newGateway(t, mem)
	ctx := context.Background()

	a, err := g.Encrypt(ctx, "same payload")
	require.NoError(t, err)
	b, err := g.Encrypt(ctx, "same payload")
	require.NoError(t, err)
	assert.Equal(t, a, b, "cached result is reused inside the TTL window")
}

func TestGateway_DecryptDegradesToInput(t *testing.T) {
	g := newGateway(t, nil)
	ctx := context.Background()

	// Not base64 at all.
	assert.Equal(t, "!!not-base64!!", g.Decrypt(ctx, "!!not-base64!!"))

	// Valid base64, garbage contents.
	assert.Equal(t, "aGVsbG8=", g.Decrypt(ctx, "aGVsbG8="))

	// Encrypted under a different key.
	other, err := New("different-secret", nil, nil, time.Minute, time.Minute)
	require.NoError(t, err)
	foreign, err := other.Encrypt(ctx, "secret data")
	require.NoError(t, err)
	assert.Equal(t, foreign, g.Decrypt(ctx, foreign))
}

func TestNew_RejectsEmptySecret(t *testing.T) {
	_, err := New("", nil, nil, time.Minute, time.Minute)
	assert.Error(t, err)
}
