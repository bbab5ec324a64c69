package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKVStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKVStore(client)
}

func TestRedisKVStore(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	mr.FastForward(time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, kv.Set(ctx, "a", "1", 0))
	require.NoError(t, kv.Delete(ctx, "a", "b"))
	require.NoError(t, kv.Delete(ctx))
	assert.False(t, mr.Exists("a"))
}

func TestTableCache_OnRedis(t *testing.T) {
	mr, kv := setupTestRedis(t)
	r := &countingReader{sheet: Sheet{Header: PatientColumns, Rows: [][]string{{"0000001", "นาย"}}}}
	staff := NewTableCache(r, kv, 5*time.Second, "staff", zap.NewNop())
	public := NewTableCache(r, kv, 10*time.Second, "public", zap.NewNop())
	ctx := context.Background()

	s, err := staff.ReadTable(ctx, Patients)
	require.NoError(t, err)
	assert.Equal(t, "นาย", s.Rows[0][1])
	_, _ = staff.ReadTable(ctx, Patients)
	_, _ = public.ReadTable(ctx, Patients)
	assert.Equal(t, 2, r.calls[Patients])
	assert.True(t, mr.Exists("asthma:staff:table:patients"))
	assert.True(t, mr.Exists("asthma:public:table:patients"))

	mr.FastForward(5 * time.Second)
	_, _ = staff.ReadTable(ctx, Patients)
	_, _ = public.ReadTable(ctx, Patients)
	assert.Equal(t, 3, r.calls[Patients])

	require.NoError(t, public.Invalidate(ctx, Patients))
	assert.False(t, mr.Exists("asthma:public:table:patients"))
	assert.True(t, mr.Exists("asthma:staff:table:patients"))
}
