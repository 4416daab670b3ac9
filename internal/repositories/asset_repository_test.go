package repositories_test

import (
	"context"
	"testing"

	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRepository(t *testing.T) {
	repo := repositories.NewAssetRepository(testutil.NewDB(t))
	ctx := context.Background()

	usd := &models.Asset{Symbol: "USD", IsCash: true}
	require.NoError(t, repo.Create(ctx, usd))
	require.NoError(t, repo.Create(ctx, &models.Asset{Symbol: "BTC"}))
	assert.NotZero(t, usd.ID)

	err := repo.Create(ctx, &models.Asset{Symbol: "USD"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateAsset)

	got, err := repo.GetBySymbol(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, usd.ID, got.ID)
	assert.True(t, got.IsCash)

	byID, err := repo.GetByID(ctx, usd.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD", byID.Symbol)

	_, err = repo.GetBySymbol(ctx, "DOGE")
	assert.ErrorIs(t, err, repositories.ErrAssetNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrAssetNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "USD", all[0].Symbol)
}
