package assets_test

import (
	"context"
	"testing"

	domainerrors "simex/internal/errors"
	"simex/internal/repositories"
	"simex/internal/services/assets"
	"simex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetCatalog(t *testing.T) {
	svc := assets.NewService(repositories.NewAssetRepository(testutil.NewDB(t)))
	ctx := context.Background()

	usdt, err := svc.Create(ctx, " usdt ", true)
	require.NoError(t, err)
	assert.Equal(t, "USDT", usdt.Symbol)

	_, err = svc.Create(ctx, "USDT", false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = svc.Create(ctx, "", false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	got, err := svc.Resolve(ctx, "Usdt")
	require.NoError(t, err)
	assert.Equal(t, usdt.ID, got.ID)
	assert.True(t, got.IsCash)

	_, err = svc.Resolve(ctx, "XYZ")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.Get(ctx, usdt.ID+100)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
