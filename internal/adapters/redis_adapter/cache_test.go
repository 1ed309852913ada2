package redis_a_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/retailflow/pos-be/internal/adapters/redis_adapter"
	"github.com/retailflow/pos-be/internal/core/domain"
	"github.com/retailflow/pos-be/test/helpers"
)

func setupCache(t *testing.T) (*redis_a.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger()), mr
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	t.Run("stores_and_retrieves_string", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "test:string", "test value"))

		var result string
		require.NoError(t, cache.Get(ctx, "test:string", &result))
		assert.Equal(t, "test value", result)
	})

	t.Run("stores_and_retrieves_receipt", func(t *testing.T) {
		receipt := &domain.Receipt{
			ID: 7,
			Lines: []domain.LineItem{{
				ItemCode:  "72800B",
				ItemName:  "4 PURPLE FLOCK DINNER CANDLES",
				UnitPrice: decimal.RequireFromString("2.55"),
				Quantity:  1,
			}},
			Total:        decimal.RequireFromString("2.55"),
			CashTendered: decimal.RequireFromString("3.55"),
			Change:       decimal.RequireFromString("1.00"),
			Status:       domain.ReceiptCompleted,
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, cache.Set(ctx, "test:receipt", receipt))

		var result domain.Receipt
		require.NoError(t, cache.Get(ctx, "test:receipt", &result))
		assert.Equal(t, receipt.ID, result.ID)
		assert.True(t, receipt.Total.Equal(result.Total))
		assert.Len(t, result.Lines, 1)
		assert.Equal(t, "72800B", result.Lines[0].ItemCode)
	})

	t.Run("miss_returns_ErrCacheMiss", func(t *testing.T) {
		var result string
		err := cache.Get(ctx, "test:absent", &result)
		assert.Equal(t, redis_a.ErrCacheMiss, err)
	})
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	err := cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond)
	require.NoError(t, err)

	var result string
	err = cache.Get(ctx, "ttl:test", &result)
	require.NoError(t, err)
	assert.Equal(t, "value", result)

	mr.FastForward(200 * time.Millisecond)

	err = cache.Get(ctx, "ttl:test", &result)
	assert.Equal(t, redis_a.ErrCacheMiss, err)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	keys := []string{"del:1", "del:2", "del:3"}
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, "value"))
	}

	require.NoError(t, cache.Delete(ctx, keys...))

	for _, key := range keys {
		var result string
		err := cache.Get(ctx, key, &result)
		assert.Equal(t, redis_a.ErrCacheMiss, err)
	}
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	fetchCount := 0
	fetchFunc := func() (interface{}, error) {
		fetchCount++
		return "fetched value", nil
	}

	var result1 string
	err := cache.GetOrSet(ctx, "getorset:test", &result1, fetchFunc, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "fetched value", result1)
	assert.Equal(t, 1, fetchCount)

	var result2 string
	err = cache.GetOrSet(ctx, "getorset:test", &result2, fetchFunc, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "fetched value", result2)
	assert.Equal(t, 1, fetchCount)
}

func TestCache_Increment(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	val, err := cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)
}

func TestCache_SetNX(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	ok, err := cache.SetNX(ctx, "setnx:test", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetNX(ctx, "setnx:test", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	var result string
	err = cache.Get(ctx, "setnx:test", &result)
	require.NoError(t, err)
	assert.Equal(t, "first", result)
}

func TestCache_BuildKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   redis_a.CacheKeyPrefix
		parts    []string
		expected string
	}{
		{
			name:     "receipt_key",
			prefix:   redis_a.PrefixReceipt,
			parts:    []string{"42"},
			expected: "pos:receipt:42",
		},
		{
			name:     "session_key",
			prefix:   redis_a.PrefixSession,
			parts:    []string{"cashier", "anna"},
			expected: "pos:session:cashier:anna",
		},
		{
			name:     "no_parts",
			prefix:   redis_a.PrefixCatalog,
			parts:    []string{},
			expected: "pos:catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redis_a.BuildKey(tt.prefix, tt.parts...)
			assert.Equal(t, tt.expected, result)
		})
	}
}
