package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/policy"
)

type captureRecorder struct {
	mu         sync.Mutex
	activities []string
}

func (c *captureRecorder) Record(ctx context.Context, memberID, activity, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activities = append(c.activities, activity)
}

func newServiceWithMember(t *testing.T) (*Service, *captureRecorder, *Member) {
	t.Helper()
	repo := NewMemoryRepository()
	rec := &captureRecorder{}
	svc := NewService(repo, rec, nil, []byte("test-secret"), time.Hour)

	member, err := svc.Enroll(context.Background(), &Member{
		Username: "sarah",
		AgeGroup: policy.Elementary,
		Role:     policy.RoleChild,
	}, "correct horse")
	require.NoError(t, err)
	return svc, rec, member
}

func TestEnroll_RequiresCredentials(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, nil, []byte("k"), time.Hour)

	_, err := svc.Enroll(context.Background(), &Member{Username: ""}, "pw")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Enroll(context.Background(), &Member{Username: "sam"}, "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestAuthenticate_Success(t *testing.T) {
	svc, rec, enrolled := newServiceWithMember(t)
	ctx := context.Background()

	member, token, err := svc.Authenticate(ctx, "sarah", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, enrolled.ID, member.ID)
	assert.True(t, member.Online)
	assert.False(t, member.LastLogin.IsZero())

	id, err := MemberIDFromToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, enrolled.ID, id)

	assert.Contains(t, rec.activities, "login")
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, rec, _ := newServiceWithMember(t)

	_, _, err := svc.Authenticate(context.Background(), "sarah", "wrong")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Contains(t, rec.activities, "login failed")
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc, _, _ := newServiceWithMember(t)

	_, _, err := svc.Authenticate(context.Background(), "nobody", "pw")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	svc, _, _ := newServiceWithMember(t)

	_, _, err := svc.Authenticate(context.Background(), "", "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestToken_WrongKeyRejected(t *testing.T) {
	token, err := GenerateToken("m1", "child", []byte("key-a"), time.Hour)
	require.NoError(t, err)

	_, err = MemberIDFromToken(token, []byte("key-b"))
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestToken_ExpiredRejected(t *testing.T) {
	token, err := GenerateToken("m1", "child", []byte("key"), -time.Minute)
	require.NoError(t, err)

	_, err = MemberIDFromToken(token, []byte("key"))
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestMember_ListMatching(t *testing.T) {
	m := &Member{
		AllowedApps:     []string{"Family Chat"},
		BlockedApps:     []string{"Casino Royale"},
		AllowedWebsites: []string{"khanacademy.org"},
		BlockedWebsites: []string{"videotube"},
	}

	assert.True(t, m.AppAllowed("family chat"), "app matching is case-insensitive")
	assert.True(t, m.AppBlocked("Casino Royale"))
	assert.False(t, m.AppBlocked("Family Chat"))
	assert.True(t, m.WebsiteAllowed("https://www.khanacademy.org/learn"))
	assert.True(t, m.WebsiteBlocked("https://VIDEOTUBE.example"))
	assert.False(t, m.WebsiteBlocked("https://example.org"))
}
