package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthgate/hearthgate/internal/logging"
)

const (
	// DefaultFlushInterval is how often the background flusher drains the
	// pending queue.
	DefaultFlushInterval = 30 * time.Second

	// DefaultBatchSize caps how many events one flush persists. Anything
	// beyond the cap waits for the next tick, bounding per-flush latency.
	DefaultBatchSize = 100
)

// Encryptor is the slice of the crypto gateway the trail needs.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

// Trail is the audit pipeline: Record enqueues and returns immediately,
// a timer-driven flush drains the queue in bounded batches, serializes and
// encrypts them, and appends the result to the store.
//
// Delivery is best-effort and at-most-once. A batch that fails to serialize
// or persist is dropped after logging; upgrading this to durable delivery
// would mean replacing the pending queue with a write-ahead log.
type Trail struct {
	store  Store
	crypto Encryptor
	logger logging.Logger

	interval  time.Duration
	batchSize int
	now       func() time.Time

	mu      sync.Mutex // guards pending
	pending []Event

	flushMu sync.Mutex // single flush in flight at a time
}

// Option tweaks Trail construction.
type Option func(*Trail)

func WithFlushInterval(d time.Duration) Option {
	return func(t *Trail) { t.interval = d }
}

func WithBatchSize(n int) Option {
	return func(t *Trail) { t.batchSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(t *Trail) { t.now = now }
}

func New(store Store, crypto Encryptor, logger logging.Logger, opts ...Option) *Trail {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	t := &Trail{
		store:     store,
		crypto:    crypto,
		logger:    logger,
		interval:  DefaultFlushInterval,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record classifies the activity, builds an event, and enqueues it. It never
// blocks on storage and never fails.
func (t *Trail) Record(ctx context.Context, memberID, activity, detail string) {
	event := Event{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Activity:  activity,
		Detail:    detail,
		Level:     Classify(activity),
		Timestamp: t.now(),
	}

	t.mu.Lock()
	t.pending = append(t.pending, event)
	n := len(t.pending)
	t.mu.Unlock()

	t.logger.Debug(ctx, "audit event queued", "level", event.Level, "pending", n)
}

// Pending reports how many events await the next flush.
func (t *Trail) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Run flushes on a fixed interval until ctx is cancelled, then attempts one
// final drain bounded by shutdownTimeout.
func (t *Trail) Run(ctx context.Context, shutdownTimeout time.Duration) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			t.Drain(final)
			return
		case <-ticker.C:
			t.Flush(ctx)
		}
	}
}

// Flush captures up to batchSize pending events and persists them as one
// encrypted batch. Only one flush runs at a time; concurrent callers queue
// behind the flush mutex.
func (t *Trail) Flush(ctx context.Context) {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	batch := t.take()
	if len(batch) == 0 {
		return
	}

	if err := t.persist(ctx, batch); err != nil {
		// At-most-once: the batch is gone. Keeping it would grow memory
		// without bound under a persistent storage outage.
		t.logger.Error(ctx, "audit batch dropped", "events", len(batch), "error", err)
		return
	}
	t.logger.Debug(ctx, "audit batch persisted", "events", len(batch))
}

// Drain flushes repeatedly until the queue is empty or ctx expires.
func (t *Trail) Drain(ctx context.Context) {
	for t.Pending() > 0 {
		if ctx.Err() != nil {
			t.logger.Warn(ctx, "audit drain abandoned", "pending", t.Pending())
			return
		}
		t.Flush(ctx)
	}
}

// take atomically captures the next batch from the pending queue.
func (t *Trail) take() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.pending)
	if n == 0 {
		return nil
	}
	if n > t.batchSize {
		n = t.batchSize
	}

	batch := make([]Event, n)
	copy(batch, t.pending[:n])
	t.pending = t.pending[n:]
	return batch
}

func (t *Trail) persist(ctx context.Context, events []Event) error {
	serialized, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("serializing batch: %w", err)
	}

	payload := string(serialized)
	if t.crypto != nil {
		payload, err = t.crypto.Encrypt(ctx, payload)
		if err != nil {
			return fmt.Errorf("encrypting batch: %w", err)
		}
	}

	batch := Batch{
		ID:         uuid.NewString(),
		FlushedAt:  t.now(),
		EventCount: len(events),
		Payload:    payload,
	}
	if err := t.store.AppendBatch(ctx, batch); err != nil {
		return fmt.Errorf("appending batch: %w", err)
	}
	return nil
}
