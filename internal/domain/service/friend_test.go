package service

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"
)

func TestFriendService_CreateEdgeIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")

	require.NoError(t, env.friends.CreateEdge(ctx, a.ID, b.ID))

	ok, err := env.friends.AreFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.friends.AreFriends(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFriendService_SelfFriendship(t *testing.T) {
	env := newTestEnv(t)
	a := env.profile(t, "a")

	err := env.friends.CreateEdge(context.Background(), a.ID, a.ID)
	assert.ErrorIs(t, err, errorz.SelfFriendship)
	assert.ErrorIs(t, err, errorz.InvalidInput)
	assert.Empty(t, env.db.edges)
}

func TestFriendService_DuplicateEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")

	require.NoError(t, env.friends.CreateEdge(ctx, a.ID, b.ID))
	err := env.friends.CreateEdge(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, errorz.AlreadyFriends)
	assert.ErrorIs(t, err, errorz.Conflict)
	assert.Len(t, env.db.edges, 1)
}

func TestFriendService_DeleteEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")
	env.befriend(t, a, b)

	require.NoError(t, env.friends.DeleteEdge(ctx, b.ID, a.ID))
	ok, err := env.friends.AreFriends(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = env.friends.DeleteEdge(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, errorz.EdgeNotFound)
	assert.ErrorIs(t, err, errorz.NotFound)
}

func TestFriendService_DeleteEdgeMalformedID(t *testing.T) {
	env := newTestEnv(t)
	a := env.profile(t, "a")

	err := env.friends.DeleteEdge(context.Background(), a.ID, "abc")
	assert.ErrorIs(t, err, errorz.EdgeNotFound)
}

func TestFriendService_Chain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b, c, d := env.profile(t, "a"), env.profile(t, "b"), env.profile(t, "c"), env.profile(t, "d")
	env.befriend(t, a, b)
	env.befriend(t, b, c)
	env.befriend(t, c, d)

	direct, err := env.friends.DirectFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, direct)

	fof, err := env.friends.FriendsOfFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, fof)
}

func TestFriendService_FriendsOfFriendsRandomGraphs(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for round := 0; round < 30; round++ {
		env := newTestEnv(t)
		const n = 12
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("%02d", i)
		}
		adj := make(map[string]map[string]bool)
		for _, id := range ids {
			adj[id] = make(map[string]bool)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rnd.Intn(4) == 0 {
					require.NoError(t, env.friends.CreateEdge(ctx, ids[i], ids[j]))
					adj[ids[i]][ids[j]] = true
					adj[ids[j]][ids[i]] = true
				}
			}
		}

		for _, u := range ids {
			fof, err := env.friends.FriendsOfFriends(ctx, u)
			require.NoError(t, err)

			var want []string
			for _, v := range ids {
				if v == u || adj[u][v] {
					continue
				}
				for f := range adj[u] {
					if adj[f][v] {
						want = append(want, v)
						break
					}
				}
			}
			slices.Sort(want)

			assert.NotContains(t, fof, u)
			for f := range adj[u] {
				assert.NotContains(t, fof, f)
			}
			if len(want) == 0 {
				assert.Empty(t, fof, "round %d user %s", round, u)
			} else {
				assert.Equal(t, want, fof, "round %d user %s", round, u)
			}
		}
	}
}

func TestFriendService_CacheReadThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b, c := env.profile(t, "a"), env.profile(t, "b"), env.profile(t, "c")
	env.befriend(t, a, b)

	_, err := env.friends.DirectFriends(ctx, a.ID)
	require.NoError(t, err)
	calls := env.db.neighborCalls

	_, err = env.friends.DirectFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, calls, env.db.neighborCalls)

	env.befriend(t, a, c)
	direct, err := env.friends.DirectFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, direct)
}

func TestFriendService_CacheSkipsListReadBeforeDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")
	env.befriend(t, a, b)

	// The friendship is removed between the database read of b's friends
	// and the cache fill.
	env.db.afterNeighbors = func(id string) {
		env.db.afterNeighbors = nil
		require.NoError(t, env.friends.DeleteEdge(ctx, a.ID, b.ID))
	}

	direct, err := env.friends.DirectFriends(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, direct)

	direct, err = env.friends.DirectFriends(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, direct)
}

func TestFriendService_CacheFailureFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b := env.profile(t, "a"), env.profile(t, "b")
	env.befriend(t, a, b)
	env.cache.failing = true

	direct, err := env.friends.DirectFriends(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, direct)
}

func TestFriendService_WithoutCache(t *testing.T) {
	db := newMemDB()
	friends := NewFriendService(memFriends{db}, nil, logger.Nop())
	ctx := context.Background()

	require.NoError(t, friends.CreateEdge(ctx, "a", "b"))
	require.NoError(t, friends.CreateEdge(ctx, "b", "c"))

	fof, err := friends.FriendsOfFriends(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, fof)
}
