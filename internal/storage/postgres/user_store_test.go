package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	u := createTestUser(t, ctx, pool, "galen")

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.BirthDate, got.BirthDate.UTC())
	assert.Equal(t, "14:30", got.BirthTime)
	assert.Equal(t, "Asia/Taipei", got.Timezone)
	assert.Equal(t, domain.ToneInspiring, got.PreferredTone)
	assert.True(t, got.DailyGCodeEnabled)
	assert.Equal(t, u.CreatedAt, got.CreatedAt)

	got, err = store.GetByUsername(ctx, "galen")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	createTestUser(t, ctx, pool, "galen")
	dup := domain.NewUser("galen", day(1991, 2, 2), "", "Lisbon", "")
	assert.ErrorIs(t, store.Create(ctx, dup), storage.ErrDuplicateKey)
}

func TestUserStore_UpdateListDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	alice := createTestUser(t, ctx, pool, "alice")
	bob := createTestUser(t, ctx, pool, "bob")

	bob.DailyGCodeEnabled = false
	bob.PreferredTone = domain.ToneTechnical
	require.NoError(t, store.Update(ctx, bob))

	enabled, err := store.ListDailyEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, alice.ID, enabled[0].ID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, domain.ToneTechnical, all[1].PreferredTone)

	bob.Username = "alice"
	assert.ErrorIs(t, store.Update(ctx, bob), storage.ErrDuplicateKey)

	require.NoError(t, store.Delete(ctx, alice.ID))
	assert.ErrorIs(t, store.Delete(ctx, alice.ID), storage.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, alice), storage.ErrNotFound)
}
