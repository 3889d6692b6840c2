package graph_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-connections/internal/domain"
	"family-connections/internal/mocks"
	"family-connections/internal/service/graph"
)

type countingConns struct {
	treeConns
	calls int
}

func (c *countingConns) GetConnectionsForFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error) {
	c.calls++
	return c.treeConns.GetConnectionsForFamilyTree(ctx, treeID)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestService_GetTreeViewCached(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	persons, conns := fixture()
	people := new(mocks.PersonRepository)
	people.On("ListByFamilyTree", ctx, "tree-1").Return(persons, nil)
	source := &countingConns{treeConns: treeConns{conns: conns}}

	svc := graph.NewService(source, people, nil, nil, client, 2*time.Minute, nil)

	first, err := svc.GetTreeView(ctx, "tree-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("family:tree:tree-1:view"))
	assert.Equal(t, 2*time.Minute, mr.TTL("family:tree:tree-1:view"))

	second, err := svc.GetTreeView(ctx, "tree-1")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	people.AssertNumberOfCalls(t, "ListByFamilyTree", 1)

	want, err := json.Marshal(first)
	require.NoError(t, err)
	got, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.True(t, second.Generations["donor"].IsDonor)
}

func TestService_GetTreeViewIgnoresCorruptCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	persons, conns := fixture()
	people := new(mocks.PersonRepository)
	people.On("ListByFamilyTree", ctx, "tree-1").Return(persons, nil)
	require.NoError(t, mr.Set("family:tree:tree-1:view", "{broken"))

	svc := graph.NewService(treeConns{conns: conns}, people, nil, nil, client, 0, nil)

	view, err := svc.GetTreeView(ctx, "tree-1")
	require.NoError(t, err)
	assert.Len(t, view.Persons, 5)

	raw, err := mr.Get("family:tree:tree-1:view")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(raw)))
}

func TestService_InvalidateForConnection(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, mr *miniredis.Miniredis) {
		t.Helper()
		for _, key := range []string{"family:tree:a:view", "family:tree:b:view", "session:u1"} {
			require.NoError(t, mr.Set(key, "{}"))
		}
	}

	t.Run("Tagged connection drops its own tree", func(t *testing.T) {
		mr, client := newRedis(t)
		seed(t, mr)
		svc := graph.NewService(treeConns{}, nil, nil, nil, client, 0, nil)

		treeID := "a"
		conn := &domain.Connection{ID: "c1", FamilyTreeID: &treeID}
		require.NoError(t, svc.InvalidateForConnection(ctx, conn))

		assert.False(t, mr.Exists("family:tree:a:view"))
		assert.True(t, mr.Exists("family:tree:b:view"))
		assert.True(t, mr.Exists("session:u1"))
	})

	t.Run("Untagged connection drops every tree view", func(t *testing.T) {
		mr, client := newRedis(t)
		seed(t, mr)
		svc := graph.NewService(treeConns{}, nil, nil, nil, client, 0, nil)

		require.NoError(t, svc.InvalidateForConnection(ctx, &domain.Connection{ID: "c2"}))

		assert.False(t, mr.Exists("family:tree:a:view"))
		assert.False(t, mr.Exists("family:tree:b:view"))
		assert.True(t, mr.Exists("session:u1"))
	})

	t.Run("Nothing cached is not an error", func(t *testing.T) {
		_, client := newRedis(t)
		svc := graph.NewService(treeConns{}, nil, nil, nil, client, 0, nil)

		assert.NoError(t, svc.InvalidateForConnection(ctx, &domain.Connection{ID: "c3"}))
	})
}
