package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLock(client), mr
}

func TestLockIsExclusive(t *testing.T) {
	l, mr := newTestLock(t)
	ctx := context.Background()

	token, ok, err := l.Lock(ctx, "room:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists("lock:room:1"))

	_, ok, err = l.Lock(ctx, "room:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.Lock(ctx, "room:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockReleases(t *testing.T) {
	l, mr := newTestLock(t)
	ctx := context.Background()

	token, ok, err := l.Lock(ctx, "room:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "room:1", token))
	assert.False(t, mr.Exists("lock:room:1"))

	_, ok, err = l.Lock(ctx, "room:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockWithStaleTokenKeepsNewOwner(t *testing.T) {
	l, mr := newTestLock(t)
	ctx := context.Background()

	stale, ok, err := l.Lock(ctx, "room:1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	fresh, ok, err := l.Lock(ctx, "room:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "room:1", stale))

	got, err := mr.Get("lock:room:1")
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}
