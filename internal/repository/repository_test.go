package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"caradmin/internal/database"
	"caradmin/internal/domain"
	"caradmin/internal/pkg/idx"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newSession(adminID int64, expires time.Time) *domain.ConsoleSession {
	now := time.Now().UTC()
	return &domain.ConsoleSession{
		ID:          idx.New().String(),
		AdminID:     adminID,
		Email:       "op@adenatrans.ru",
		TokenSealed: []byte("sealed"),
		CreatedAt:   now,
		LastSeenAt:  now,
		ExpiresAt:   expires.UTC(),
	}
}

/* ==================== CONSOLE SESSIONS ==================== */

func TestConsoleSession_CreateGet(t *testing.T) {
	repo := NewConsoleSessionRepository(newTestDB(t))
	ctx := context.Background()

	s := newSession(7, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.AdminID)
	assert.Equal(t, []byte("sealed"), got.TokenSealed)
	assert.True(t, got.Usable(time.Now()))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConsoleSession_RevokeOnce(t *testing.T) {
	repo := NewConsoleSessionRepository(newTestDB(t))
	ctx := context.Background()

	s := newSession(1, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, s))

	first, err := repo.Revoke(ctx, s.ID, domain.RevokeUnauthorized)
	require.NoError(t, err)
	second, err := repo.Revoke(ctx, s.ID, domain.RevokeLogout)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())
	assert.Equal(t, domain.RevokeUnauthorized, got.RevokeReason)
}

func TestConsoleSession_RevokeByAdmin(t *testing.T) {
	repo := NewConsoleSessionRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newSession(5, time.Now().Add(time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, newSession(6, time.Now().Add(time.Hour))))

	n, err := repo.RevokeByAdmin(ctx, 5, domain.RevokeLogout)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestConsoleSession_DeleteStale(t *testing.T) {
	repo := NewConsoleSessionRepository(newTestDB(t))
	ctx := context.Background()

	live := newSession(1, time.Now().Add(time.Hour))
	expired := newSession(1, time.Now().Add(-time.Hour))
	revoked := newSession(1, time.Now().Add(time.Hour))
	for _, s := range []*domain.ConsoleSession{live, expired, revoked} {
		require.NoError(t, repo.Create(ctx, s))
	}
	_, err := repo.Revoke(ctx, revoked.ID, domain.RevokeLogout)
	require.NoError(t, err)

	n, err := repo.DeleteStale(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

/* ==================== FEED EXPORTS ==================== */

func TestFeedExport_ListLatest(t *testing.T) {
	repo := NewFeedExportRepository(newTestDB(t))
	ctx := context.Background()

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.FeedExport{
			Trigger:   domain.FeedTriggerHTTP,
			Offers:    i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Offers)
	assert.Equal(t, 1, list[1].Offers)

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Offers)
}
