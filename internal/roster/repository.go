package roster

import (
	"context"
	"time"
)

// Repository is the storage port for family members.
type Repository interface {
	Create(ctx context.Context, member *Member) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time, online bool) error
}
