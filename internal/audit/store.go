package audit

import (
	"context"
	"sync"
	"time"
)

// Batch is what reaches durable storage: the encrypted serialization of the
// events captured in one flush cycle, plus enough metadata to reason about
// retention without decrypting.
type Batch struct {
	ID         string
	FlushedAt  time.Time
	EventCount int
	Payload    string
}

// Store is append-only durable storage for audit batches.
type Store interface {
	AppendBatch(ctx context.Context, batch Batch) error
}

// MemoryStore collects batches in memory. Used in tests and as the sink of
// last resort when no durable backend is configured.
type MemoryStore struct {
	mu      sync.Mutex
	batches []Batch

	// FailWith, when non-nil, makes every append fail. Lets tests exercise
	// the drop-on-failure path.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendBatch(ctx context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	s.batches = append(s.batches, batch)
	return nil
}

// Batches returns a copy of everything appended so far.
func (s *MemoryStore) Batches() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Batch, len(s.batches))
	copy(out, s.batches)
	return out
}
