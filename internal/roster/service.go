package roster

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/logging"
)

// Recorder is the slice of the audit trail the roster needs: fire-and-forget
// event capture.
type Recorder interface {
	Record(ctx context.Context, memberID, activity, detail string)
}

// Service handles member lookup and authentication. Password resets are out
// of scope; credentials are seeded by the enrolment flow that owns Create.
type Service struct {
	repo          Repository
	audit         Recorder
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	now           func() time.Time
}

func NewService(repo Repository, audit Recorder, logger logging.Logger, jwtSecret []byte, tokenValidity time.Duration) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		repo:          repo,
		audit:         audit,
		logger:        logger,
		jwtSecret:     jwtSecret,
		tokenValidity: tokenValidity,
		now:           time.Now,
	}
}

// Member fetches a single member by id.
func (s *Service) Member(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// Members lists the whole household.
func (s *Service) Members(ctx context.Context) ([]*Member, error) {
	return s.repo.List(ctx)
}

// Enroll creates a member with a fresh credential verifier.
func (s *Service) Enroll(ctx context.Context, member *Member, password string) (*Member, error) {
	if member.Username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", common.ErrInvalidInput)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	member.Salt = salt
	member.Verifier = deriveVerifier(password, salt)

	return s.repo.Create(ctx, member)
}

// Authenticate verifies a member's credentials and, on success, mints a
// session token, stamps the login time, and marks the member online.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Member, string, error) {
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: empty credentials", common.ErrInvalidInput)
	}

	member, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.record(ctx, "", "login failed", "unknown username "+username)
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", err
	}

	candidate := deriveVerifier(password, member.Salt)
	if subtle.ConstantTimeCompare(candidate, member.Verifier) != 1 {
		s.record(ctx, member.ID, "login failed", "verifier mismatch")
		return nil, "", common.ErrUnauthorized
	}

	token, err := GenerateToken(member.ID, string(member.Role), s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("minting token: %w", err)
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, member.ID, now, true); err != nil {
		// Login still succeeds; the stamp is advisory.
		s.logger.Warn(ctx, "updating last login failed", "member", member.ID, "error", err)
	}
	member.LastLogin = now
	member.Online = true

	s.record(ctx, member.ID, "login", "session opened for "+member.Username)
	return member, token, nil
}

func (s *Service) record(ctx context.Context, memberID, activity, detail string) {
	if s.audit != nil {
		s.audit.Record(ctx, memberID, activity, detail)
	}
}

// deriveVerifier derives the stored credential verifier with argon2id. The
// parameters match the household-scale threat model, not a public service.
func deriveVerifier(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}
