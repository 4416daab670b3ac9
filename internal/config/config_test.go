package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadLedgerConfig_Defaults(t *testing.T) {
	cfg := LoadLedgerConfig()

	assert.True(t, cfg.DepositLimitUSD.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 24*time.Hour, cfg.DepositWindow)
	assert.Equal(t, 5*time.Second, cfg.LockWaitTimeout)
	assert.Equal(t, "ledger:balance-changed", cfg.NotifyChannel)
}

func TestLoadLedgerConfig_FromEnv(t *testing.T) {
	t.Setenv("DEPOSIT_LIMIT_USD", "1000.50")
	t.Setenv("DEPOSIT_WINDOW_HOURS", "12")
	t.Setenv("LOCK_WAIT_TIMEOUT", "250ms")
	t.Setenv("BALANCE_CACHE_TTL", "not-a-duration")

	cfg := LoadLedgerConfig()

	assert.True(t, cfg.DepositLimitUSD.Equal(decimal.RequireFromString("1000.50")))
	assert.Equal(t, 12*time.Hour, cfg.DepositWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.LockWaitTimeout)
	assert.Equal(t, 5*time.Minute, cfg.BalanceCacheTTL)
}

func TestGetEnv_EmptyFallsBack(t *testing.T) {
	t.Setenv("SIMEX_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("SIMEX_EMPTY", "fallback"))
}
