package catalogcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, time.Minute)
}

func TestFetchReadThrough(t *testing.T) {
	mr, c := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	v, err := Fetch(ctx, c, KeyHotBooks(10), load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	v, err = Fetch(ctx, c, KeyHotBooks(10), load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(KeyHotBooks(10)))

	cnt := c.Counters()
	assert.Equal(t, int64(1), cnt.Hits)
	assert.Equal(t, int64(1), cnt.Loads)

	mr.FastForward(2 * time.Minute)
	_, err = Fetch(ctx, c, KeyHotBooks(10), load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchDegradesWhenRedisDown(t *testing.T) {
	mr, c := newCache(t)
	mr.Close()

	v, err := Fetch(context.Background(), c, KeyCarousels, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	mr, c := newCache(t)
	boom := errors.New("db down")

	_, err := Fetch(context.Background(), c, KeyCategoryTree, func(context.Context) ([]int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(KeyCategoryTree))
}

func TestDisabledCache(t *testing.T) {
	c := New(nil, 0)
	assert.False(t, c.Enabled())

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), c, KeyNewBooks(5), func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	c.Invalidate(context.Background(), KeyNewBooks(5))
	require.NoError(t, c.InvalidateAll(context.Background()))
}

func TestInvalidateAll(t *testing.T) {
	mr, c := newCache(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("other:key", "x"))

	for _, k := range []string{KeyCarousels, KeyCategoryTree, KeyHotBooks(3)} {
		_, err := Fetch(ctx, c, k, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}
	require.NoError(t, c.InvalidateAll(ctx))

	assert.False(t, mr.Exists(KeyCarousels))
	assert.False(t, mr.Exists(KeyHotBooks(3)))
	assert.True(t, mr.Exists("other:key"))
}
