package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunVerdictStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	v := domain.Verdict{ID: "short-lived", Automaton: "hello", FinishedAt: time.Now()}
	require.NoError(t, store.Save(ctx, v))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrVerdictNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	members, err := mr.ZMembers("vigil:verdict:index")
	if err == nil {
		assert.Empty(t, members, "expired verdicts are pruned from the index")
	}
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Verdict{ID: "v1", FinishedAt: time.Now()}))

	assert.True(t, mr.Exists("custom:app:v1"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "v1", list[0].ID)
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), domain.Verdict{ID: "x", FinishedAt: time.Now()}))
	assert.True(t, mr.Exists("vigil:verdict:x"))

	_, err = redis.NewFromURL("not a url")
	assert.Error(t, err)
}
