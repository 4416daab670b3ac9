package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerConfig holds the tunables of the wallet ledger.
type LedgerConfig struct {
	// DepositLimitUSD caps cash deposits per user over DepositWindow.
	// Zero or negative disables the cap.
	DepositLimitUSD   decimal.Decimal
	DepositWindow     time.Duration
	LockWaitTimeout   time.Duration
	ProcessingTimeout time.Duration
	BalanceCacheTTL   time.Duration
	NotifyChannel     string
}

func LoadLedgerConfig() LedgerConfig {
	return LedgerConfig{
		DepositLimitUSD:   GetDecimalEnv("DEPOSIT_LIMIT_USD", decimal.NewFromInt(10000)),
		DepositWindow:     time.Duration(GetIntEnv("DEPOSIT_WINDOW_HOURS", 24)) * time.Hour,
		LockWaitTimeout:   GetDurationEnv("LOCK_WAIT_TIMEOUT", 5*time.Second),
		ProcessingTimeout: GetDurationEnv("PROCESSING_TIMEOUT", 30*time.Second),
		BalanceCacheTTL:   GetDurationEnv("BALANCE_CACHE_TTL", 5*time.Minute),
		NotifyChannel:     GetEnv("LEDGER_NOTIFY_CHANNEL", "ledger:balance-changed"),
	}
}
