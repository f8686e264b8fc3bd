package friends

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStorage(client, time.Minute), mr
}

func TestStorage_Miss(t *testing.T) {
	s, _ := newStorage(t)

	ids, generation, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ids)
	assert.Zero(t, generation)
}

func TestStorage_SetGetClear(t *testing.T) {
	s, mr := newStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []string{"b", "c"}, 0))
	require.NoError(t, s.Set(ctx, "b", nil, 0))

	ids, _, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, ids)

	ids, _, ok, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)

	assert.Equal(t, time.Minute, mr.TTL("friends:a"))

	require.NoError(t, s.Clear(ctx, "a", "b"))
	_, generation, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), generation)
}

func TestStorage_Expires(t *testing.T) {
	s, mr := newStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []string{"b"}, 0))
	mr.FastForward(2 * time.Minute)

	_, _, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_SetAfterConcurrentClear(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	// A reader misses, a writer changes the friendships of "b", then the
	// reader tries to store the list it loaded before the change.
	_, generation, ok, err := s.Get(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Clear(ctx, "a", "b"))
	require.NoError(t, s.Set(ctx, "b", []string{"a"}, generation))

	_, current, ok, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "b", []string{}, current))
	ids, _, ok, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)
}

func TestStorage_WithoutTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStorage(client, 0)

	require.NoError(t, s.Set(context.Background(), "a", []string{"b"}, 0))
	assert.Zero(t, mr.TTL("friends:a"))
	ids, _, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, ids)
}
