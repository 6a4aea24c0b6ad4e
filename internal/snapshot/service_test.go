package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthgate/hearthgate/internal/cryptox"
)

func TestService_RoundTripThroughFileStore(t *testing.T) {
	gateway, err := cryptox.New("household-secret", nil, nil, time.Minute, time.Minute)
	require.NoError(t, err)

	svc := NewService(NewFileStore(t.TempDir()), gateway, nil)
	ctx := context.Background()

	sessions := map[string]time.Time{
		"sarah": time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		"alex":  time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC),
	}
	require.NoError(t, svc.SaveSessions(ctx, sessions))

	restored := svc.LoadSessions(ctx)
	assert.Equal(t, sessions, restored)
}

func TestService_SaveOverwrites(t *testing.T) {
	svc := NewService(NewFileStore(t.TempDir()), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SaveSessions(ctx, map[string]time.Time{"a": time.Now().UTC()}))
	second := map[string]time.Time{"b": time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.SaveSessions(ctx, second))

	assert.Equal(t, second, svc.LoadSessions(ctx))
}

func TestService_LoadMissingSnapshotIsEmpty(t *testing.T) {
	svc := NewService(NewFileStore(t.TempDir()), nil, nil)
	assert.Empty(t, svc.LoadSessions(context.Background()))
}

type failingStore struct{ err error }

func (f failingStore) Save(ctx context.Context, name, payload string) error { return f.err }
func (f failingStore) Load(ctx context.Context, name string) (string, error) {
	return "", f.err
}

func TestService_SaveFailureIsReportedNotFatal(t *testing.T) {
	svc := NewService(failingStore{err: errors.New("bucket gone")}, nil, nil)
	err := svc.SaveSessions(context.Background(), map[string]time.Time{})
	assert.Error(t, err)
}

func TestService_CorruptSnapshotIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, store.Save(context.Background(), "screentime.sessions", "{{{not json"))

	svc := NewService(store, nil, nil)
	assert.Empty(t, svc.LoadSessions(context.Background()))
}
