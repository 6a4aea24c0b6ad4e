// Package cryptox is the crypto gateway: every payload headed for durable
// storage passes through here. Encryption is AES-256-GCM with a fresh random
// nonce per call, the nonce prepended to the ciphertext, and the result
// base64-encoded so stores can treat payloads as opaque text.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/hearthgate/hearthgate/internal/cache"
	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/logging"
)

// keySalt pins the argon2id derivation so the same secret always yields the
// same key. The key lives for the process lifetime; rotating it means
// re-encrypting stored state with a new secret.
var keySalt = []byte("hearthgate.cryptox.v1")

const (
	encPrefix = "enc"
	decPrefix = "dec"
)

// Gateway performs symmetric encrypt/decrypt of opaque string payloads with
// a read-through cache keyed by a hash of the input. A colliding hash would
// return the wrong cached result; with sha256 that risk is treated as
// negligible.
type Gateway struct {
	aead   cipher.AEAD
	cache  cache.Cache
	logger logging.Logger
	encTTL time.Duration
	decTTL time.Duration
}

// New derives the process key from secret and builds the AEAD. The cache is
// optional; pass nil to disable result caching.
func New(secret string, c cache.Cache, logger logging.Logger, encTTL, decTTL time.Duration) (*Gateway, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", common.ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	key := argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return &Gateway{aead: aead, cache: c, logger: logger, encTTL: encTTL, decTTL: decTTL}, nil
}

// Encrypt returns the base64-encoded nonce+ciphertext for plaintext. The
// result is cached by plaintext hash, so identical payloads inside the TTL
// window share one ciphertext (and one nonce).
func (g *Gateway) Encrypt(ctx context.Context, plaintext string) (string, error) {
	key := cache.Key(encPrefix, hashKey(plaintext))
	if g.cache != nil {
		if cached, found := g.cache.Get(ctx, key); found {
			return cached, nil
		}
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce: %v", common.ErrCrypto, err)
	}

	sealed := g.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	out := base64.StdEncoding.EncodeToString(sealed)

	if g.cache != nil {
		g.cache.Set(ctx, key, out, g.encTTL)
	}
	return out, nil
}

// Decrypt reverses Encrypt. Any failure (malformed base64, truncated
// input, wrong key) returns the input unchanged so callers see "data
// unreadable" rather than an application-fatal error. Failures are logged.
func (g *Gateway) Decrypt(ctx context.Context, ciphertext string) string {
	key := cache.Key(decPrefix, hashKey(ciphertext))
	if g.cache != nil {
		if cached, found := g.cache.Get(ctx, key); found {
			return cached
		}
	}

	plaintext, err := g.decrypt(ciphertext)
	if err != nil {
		g.logger.Error(ctx, "decrypt failed, returning input unchanged", "error", err)
		return ciphertext
	}

	if g.cache != nil {
		g.cache.Set(ctx, key, plaintext, g.decTTL)
	}
	return plaintext
}

func (g *Gateway) decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", common.ErrCrypto, err)
	}
	if len(raw) < g.aead.NonceSize() {
		return "", fmt.Errorf("%w: input shorter than nonce", common.ErrCrypto)
	}

	nonce, sealed := raw[:g.aead.NonceSize()], raw[g.aead.NonceSize():]
	plaintext, err := g.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return string(plaintext), nil
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
