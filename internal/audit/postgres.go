package audit

import (
	"context"
	"fmt"

	"github.com/hearthgate/hearthgate/internal/dbx"
)

// PostgresStore appends batches to the audit_batches table. Rows are only
// ever inserted.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AppendBatch(ctx context.Context, batch Batch) error {
	query := `INSERT INTO audit_batches (id, flushed_at, event_count, payload)
	          VALUES ($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, query,
		batch.ID, batch.FlushedAt, batch.EventCount, batch.Payload); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
