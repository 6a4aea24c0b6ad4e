package roster

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthgate/hearthgate/internal/common"
)

// MemoryRepository keeps members in a mutex-guarded map. Used by tests and
// by the demo configuration when no database is available.
type MemoryRepository struct {
	mu      sync.RWMutex
	members map[string]*Member
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{members: make(map[string]*Member)}
}

func (r *MemoryRepository) Create(ctx context.Context, member *Member) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	c := *member
	r.members[member.ID] = &c
	return member, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if strings.EqualFold(m.Username, username) {
			c := *m
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return common.ErrNotFound
	}
	m.LastLogin = at
	m.Online = online
	return nil
}
