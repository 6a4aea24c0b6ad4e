package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/logging"
)

const sessionsName = "screentime.sessions"

// Cipher is the slice of the crypto gateway the service needs. Snapshots
// never reach storage unencrypted.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) string
}

// Service round-trips the screen-time session table through the store. A
// failed save is logged and reported; the caller simply tries again on the
// next save cycle.
type Service struct {
	store  Store
	cipher Cipher
	logger logging.Logger
}

func NewService(store Store, cipher Cipher, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{store: store, cipher: cipher, logger: logger}
}

// SaveSessions overwrites the stored session table.
func (s *Service) SaveSessions(ctx context.Context, sessions map[string]time.Time) error {
	serialized, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("%w: serializing sessions: %v", common.ErrPersistence, err)
	}

	payload := string(serialized)
	if s.cipher != nil {
		if payload, err = s.cipher.Encrypt(ctx, payload); err != nil {
			return fmt.Errorf("%w: %v", common.ErrPersistence, err)
		}
	}

	if err := s.store.Save(ctx, sessionsName, payload); err != nil {
		s.logger.Error(ctx, "session snapshot save failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return nil
}

// LoadSessions restores the stored session table. A missing snapshot is a
// normal first boot and yields an empty table; an unreadable one is logged
// and likewise treated as empty, since losing open-session starts only
// under-counts usage for one day.
func (s *Service) LoadSessions(ctx context.Context) map[string]time.Time {
	payload, err := s.store.Load(ctx, sessionsName)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "session snapshot load failed", "error", err)
		}
		return map[string]time.Time{}
	}

	if s.cipher != nil {
		payload = s.cipher.Decrypt(ctx, payload)
	}

	var sessions map[string]time.Time
	if err := json.Unmarshal([]byte(payload), &sessions); err != nil {
		s.logger.Error(ctx, "session snapshot unreadable", "error", err)
		return map[string]time.Time{}
	}
	return sessions
}
