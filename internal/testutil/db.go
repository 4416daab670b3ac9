// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"simex/internal/models"
	"simex/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite ledger private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := repositories.OpenSQLite(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedAssets creates the given symbols and returns them keyed by symbol.
// Symbols listed in cash are flagged as cash equivalents.
func SeedAssets(t testing.TB, db *gorm.DB, symbols []string, cash ...string) map[string]models.Asset {
	t.Helper()
	isCash := make(map[string]bool, len(cash))
	for _, s := range cash {
		isCash[s] = true
	}
	repo := repositories.NewAssetRepository(db)
	out := make(map[string]models.Asset, len(symbols))
	for _, s := range symbols {
		asset := models.Asset{Symbol: s, IsCash: isCash[s]}
		require.NoError(t, repo.Create(context.Background(), &asset))
		out[s] = asset
	}
	return out
}
