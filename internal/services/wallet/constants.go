package wallet

import "time"

// Well-known hold reference types.
const (
	RefTypeOrder      = "ORDER"
	RefTypeWithdrawal = "WITHDRAWAL"
)

// Default configuration values
const (
	DefaultLockWaitTimeout = 5 * time.Second
	DefaultTimeout         = 30 * time.Second
)

// Operation names used for metrics and logs.
const (
	opDeposit           = "deposit"
	opDepositByCurrency = "deposit_by_currency"
	opLockFunds         = "lock_funds"
	opReleaseHold       = "release_hold"
	opCaptureHold       = "capture_hold"
	opGetBalances       = "get_balances"
	opGetHold           = "get_hold"
	opListHolds         = "list_holds"
)
