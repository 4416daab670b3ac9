package wallet

import (
	stderrors "errors"

	"simex/internal/errors"
)

// Service errors. Each one matches, via errors.Is, any error of the same code.
var (
	ErrInvalidInput         = errors.ErrInvalidInput
	ErrInvalidAmount        = errors.ErrInvalidAmount
	ErrInvalidReference     = errors.ErrInvalidReference
	ErrInsufficientBalance  = errors.ErrInsufficientBalance
	ErrDepositLimitExceeded = errors.ErrDepositLimitExceeded
	ErrNotFound             = errors.ErrNotFound
	ErrHoldNotFound         = errors.ErrHoldNotFound
	ErrAssetNotFound        = errors.ErrAssetNotFound
	ErrBusy                 = errors.ErrBusy
	ErrStoreFailure         = errors.ErrStoreFailure
)

// errLockedDrift means a balance holds less locked funds than one of its
// ACTIVE holds. It surfaces as a store failure.
var errLockedDrift = stderrors.New("locked balance below hold amount")
