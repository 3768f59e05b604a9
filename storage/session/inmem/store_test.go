package inmemsession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamunity/lms/core/session"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now().UTC()

	s1 := session.Session{Token: "t1", UserID: 1, CreatedAt: now}
	s2 := session.Session{Token: "t2", UserID: 2, CreatedAt: now}

	require.NoError(t, store.Save(ctx, s1))
	require.NoError(t, store.Save(ctx, s2))
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, s1, got)

	// saving the same token again replaces the entry
	s1bis := session.Session{Token: "t1", UserID: 1, CreatedAt: now.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, s1bis))
	assert.Equal(t, 2, store.Len())
	got, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, s1bis, got)

	_, err = store.Get(ctx, "unknown")
	assert.Equal(t, session.ErrNotFound, err)

	require.NoError(t, store.Delete(ctx, "t1"))
	require.NoError(t, store.Delete(ctx, "t1"))
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, "t1")
	assert.Equal(t, session.ErrNotFound, err)

	got, err = store.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, s2, got)
}

func TestStore_reusesFreedSlots(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Save(ctx, session.Session{Token: "a", UserID: 1}))
	require.NoError(t, store.Save(ctx, session.Session{Token: "b", UserID: 2}))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Save(ctx, session.Session{Token: "c", UserID: 3}))

	assert.Len(t, store.arena, 2)
	assert.Empty(t, store.free)
	assert.Equal(t, 0, store.index["c"])

	got, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, got.UserID)
}
