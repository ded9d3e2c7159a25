package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONCaches(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, testCorp, "stock", testProject)
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"value": 42}, nil
	}

	var first, second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}

func TestCacheInvalidateBumpsVersion(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.Version(ctx, testCorp)
	require.NoError(t, err)

	keyBefore, err := cache.BuildKey(ctx, testCorp, "stock", testProject)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, testCorp))

	after, err := cache.Version(ctx, testCorp)
	require.NoError(t, err)
	require.Equal(t, before+1, after)

	keyAfter, err := cache.BuildKey(ctx, testCorp, "stock", testProject)
	require.NoError(t, err)
	require.NotEqual(t, keyBefore, keyAfter)
}

func TestCacheVersionsAreScopedPerCorporation(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	otherCorp := "f1e2d3c4-b5a6-4978-8a9b-0c1d2e3f4a5b"
	before, err := cache.Version(ctx, otherCorp)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx, testCorp))

	after, err := cache.Version(ctx, otherCorp)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCacheSkipStoreServesWithoutPinning(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, testCorp, "stock", testProject)
	require.NoError(t, err)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return map[string]int{"value": 0}, ErrSkipCache
		}
		return map[string]int{"value": 42}, nil
	}

	var first, second, third map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 0, first["value"])

	// The skipped value was served but not stored: the next call loads again.
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 42, second["value"])

	require.NoError(t, cache.FetchJSON(ctx, key, &third, loader))
	require.Equal(t, 2, calls)
	require.Equal(t, 42, third["value"])
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewCache(nil, 0)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"a"}, nil
	}
	var out []string
	key, err := cache.BuildKey(ctx, testCorp, "stock", testProject)
	require.NoError(t, err)
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, calls)
	require.NoError(t, cache.Invalidate(ctx, testCorp))
}
