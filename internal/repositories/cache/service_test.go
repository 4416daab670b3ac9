package cache

import (
	"context"
	"testing"
	"time"

	"simex/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client, time.Minute), mr
}

func TestCacheService_BalancesRoundTrip(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	_, found, err := svc.GetBalances(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	gen, err := svc.BalancesGeneration(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gen)

	balances := []models.Balance{{UserID: 1, AssetID: 2, Available: models.NewAmount(decimal.RequireFromString("1.25")), Locked: models.NewAmount(decimal.NewFromInt(3))}}
	ok, err := svc.SetBalancesIfGeneration(ctx, 1, gen, balances)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("balances:user:1"))
	assert.Equal(t, time.Minute, mr.TTL("balances:user:1"))

	got, found, err := svc.GetBalances(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.True(t, got[0].Available.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, got[0].Locked.Equal(decimal.NewFromInt(3)))
}

func TestCacheService_StaleGenerationIsNotCached(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	gen, err := svc.BalancesGeneration(ctx, 1)
	require.NoError(t, err)

	// A change commits and evicts while the reader is still on the database.
	require.NoError(t, svc.InvalidateBalances(ctx, 1))

	ok, err := svc.SetBalancesIfGeneration(ctx, 1, gen, []models.Balance{{UserID: 1, AssetID: 1}})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("balances:user:1"))

	gen, err = svc.BalancesGeneration(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	ok, err = svc.SetBalancesIfGeneration(ctx, 1, gen, []models.Balance{{UserID: 1, AssetID: 1}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheService_InvalidateBalances(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := svc.SetBalancesIfGeneration(ctx, 5, 0, []models.Balance{{UserID: 5, AssetID: 1}})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.InvalidateBalances(ctx, 5))
	assert.False(t, mr.Exists("balances:user:5"))
	assert.Equal(t, generationTTL, mr.TTL("balances:gen:5"))

	_, found, err := svc.GetBalances(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_HealthCheck(t *testing.T) {
	svc, mr := newTestCache(t)
	assert.NoError(t, svc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, svc.HealthCheck(context.Background()))
}
