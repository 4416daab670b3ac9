package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"simex/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCtl(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--sqlite", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLedgerctl_LockCaptureAndAudit(t *testing.T) {
	t.Setenv("DEPOSIT_LIMIT_USD", "1000")
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCtl(t, dbPath, "migrate")
	require.NoError(t, err)

	out, err := runCtl(t, dbPath, "assets", "add", "usd", "--cash")
	require.NoError(t, err)
	var usd models.Asset
	require.NoError(t, json.Unmarshal([]byte(out), &usd))
	assert.Equal(t, "USD", usd.Symbol)
	assert.True(t, usd.IsCash)

	_, err = runCtl(t, dbPath, "deposit-currency", "1", "USD", "800")
	require.NoError(t, err)

	_, err = runCtl(t, dbPath, "deposit-currency", "1", "USD", "300")
	assert.ErrorContains(t, err, "deposit limit")

	out, err = runCtl(t, dbPath, "lock", "1", "1", "200", "--ref-id", "order-1")
	require.NoError(t, err)
	var locked struct {
		Balance models.Balance `json:"balance"`
		Hold    models.Hold    `json:"hold"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &locked))
	assert.True(t, locked.Balance.Available.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "ORDER", locked.Hold.RefType)

	_, err = runCtl(t, dbPath, "capture", locked.Hold.ID.String())
	require.NoError(t, err)

	out, err = runCtl(t, dbPath, "balances", "1")
	require.NoError(t, err)
	var balances []models.Balance
	require.NoError(t, json.Unmarshal([]byte(out), &balances))
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Available.Equal(decimal.NewFromInt(600)))
	assert.True(t, balances[0].Locked.IsZero())

	out, err = runCtl(t, dbPath, "holds", "1", "--status", "CAPTURED")
	require.NoError(t, err)
	var holds []models.Hold
	require.NoError(t, json.Unmarshal([]byte(out), &holds))
	assert.Len(t, holds, 1)

	out, err = runCtl(t, dbPath, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestLedgerctl_BadArguments(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCtl(t, dbPath, "deposit", "x", "1", "10")
	assert.ErrorContains(t, err, "bad user id")

	_, err = runCtl(t, dbPath, "release", "not-a-uuid")
	assert.ErrorContains(t, err, "bad hold id")

	_, err = runCtl(t, dbPath, "lock", "1", "1", "10")
	assert.Error(t, err)
}
