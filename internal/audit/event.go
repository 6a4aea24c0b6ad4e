// Package audit records security-relevant decisions without blocking the
// caller on I/O. Events accumulate in an in-memory pending queue and a
// background flusher persists them in encrypted batches. Delivery is
// at-most-once: a failed batch is logged and dropped.
package audit

import (
	"strings"
	"time"
)

// Level classifies an event's severity.
type Level string

const (
	LevelInformation Level = "information"
	LevelWarning     Level = "warning"
	LevelSecurity    Level = "security"
	LevelBlocked     Level = "blocked"
)

// Event is one audit record. Immutable once created; ownership passes to
// the pending queue on Record and to the store on flush.
type Event struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id,omitempty"`
	Activity  string    `json:"activity"`
	Detail    string    `json:"detail,omitempty"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

// Classify derives an event level from the activity text. Producers don't
// pick levels themselves; the keyword convention keeps call sites terse.
func Classify(activity string) Level {
	s := strings.ToLower(activity)
	switch {
	case strings.Contains(s, "blocked"):
		return LevelBlocked
	case strings.Contains(s, "failed"), strings.Contains(s, "error"):
		return LevelSecurity
	case strings.Contains(s, "warning"):
		return LevelWarning
	default:
		return LevelInformation
	}
}
