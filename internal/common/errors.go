// Package common defines shared constants and sentinel errors used across
// HearthGate components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed URL, empty credentials). Surfaced to the
	// caller, never retried automatically.
	ErrInvalidInput = errors.New("invalid input")

	// Upstream errors (remote filter unreachable or timed out). Recovered
	// locally by falling back to the local policy path.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Storage errors (audit flush or snapshot save failed). Logged, never
	// fatal to the running process.
	ErrPersistence = errors.New("persistence failure")

	// Crypto errors (decrypt of corrupt or foreign-keyed data). The gateway
	// degrades instead of propagating these past its boundary.
	ErrCrypto = errors.New("crypto failure")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
