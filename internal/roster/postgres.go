package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/dbx"
	"github.com/hearthgate/hearthgate/internal/policy"
)

// PostgresRepository stores members in the family_members table. List-valued
// fields are kept as JSONB columns so the schema stays flat.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const memberColumns = `id, username, age_group, role,
	allowed_apps, blocked_apps, allowed_websites, blocked_websites,
	screen_time, last_login, online, salt, verifier`

func (r *PostgresRepository) Create(ctx context.Context, member *Member) (*Member, error) {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}

	allowedApps, blockedApps, allowedSites, blockedSites, screenTime, err := marshalLists(member)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO family_members (` + memberColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		member.ID, member.Username, member.AgeGroup.String(), string(member.Role),
		allowedApps, blockedApps, allowedSites, blockedSites,
		screenTime, member.LastLogin, member.Online, member.Salt, member.Verifier)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE id = $1`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE lower(username) = lower($1)`
	return r.scanMember(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return members, nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time, online bool) error {
	query := `UPDATE family_members SET last_login = $2, online = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at, online)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanMember(row rowScanner) (*Member, error) {
	var (
		m            Member
		ageGroup     string
		role         string
		allowedApps  []byte
		blockedApps  []byte
		allowedSites []byte
		blockedSites []byte
		screenTime   []byte
	)

	err := row.Scan(&m.ID, &m.Username, &ageGroup, &role,
		&allowedApps, &blockedApps, &allowedSites, &blockedSites,
		&screenTime, &m.LastLogin, &m.Online, &m.Salt, &m.Verifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	m.AgeGroup, err = policy.ParseAgeGroup(ageGroup)
	if err != nil {
		return nil, err
	}
	m.Role = policy.Role(role)

	for _, v := range []struct {
		raw []byte
		dst any
	}{
		{allowedApps, &m.AllowedApps},
		{blockedApps, &m.BlockedApps},
		{allowedSites, &m.AllowedWebsites},
		{blockedSites, &m.BlockedWebsites},
		{screenTime, &m.ScreenTime},
	} {
		if len(v.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(v.raw, v.dst); err != nil {
			return nil, fmt.Errorf("decoding member %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

func marshalLists(m *Member) (allowedApps, blockedApps, allowedSites, blockedSites, screenTime []byte, err error) {
	if allowedApps, err = json.Marshal(m.AllowedApps); err != nil {
		return
	}
	if blockedApps, err = json.Marshal(m.BlockedApps); err != nil {
		return
	}
	if allowedSites, err = json.Marshal(m.AllowedWebsites); err != nil {
		return
	}
	if blockedSites, err = json.Marshal(m.BlockedWebsites); err != nil {
		return
	}
	screenTime, err = json.Marshal(m.ScreenTime)
	return
}
