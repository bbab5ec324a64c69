package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asthma-care-server/internal/store"
)

func TestRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	r := NewRegistry(store.NewMemoryKVStore(), time.Hour)
	r.now = func() time.Time { return now }

	s, err := r.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, s.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, s.ID, got.ID)

	other, err := r.Start(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)

	require.NoError(t, r.End(ctx, s.ID))
	_, err = r.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(ctx, other.ID)
	assert.NoError(t, err)

	assert.NoError(t, r.End(ctx, "unknown"))
}

func TestRegistry_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	r := NewRegistry(store.NewMemoryKVStore(), time.Hour)
	r.now = func() time.Time { return now }

	s, err := r.Start(ctx)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = r.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	newKV := func() store.KVStore {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return store.NewRedisKVStore(client)
	}
	first := NewRegistry(newKV(), time.Hour)
	second := NewRegistry(newKV(), time.Hour)

	s, err := first.Start(ctx)
	require.NoError(t, err)
	got, err := second.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, second.End(ctx, s.ID))
	_, err = first.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	next, err := first.Start(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("asthma:session:"+next.ID))
	mr.FastForward(time.Hour)
	assert.False(t, mr.Exists("asthma:session:"+next.ID))
}
