package errors

var (
	ErrInvalidInput = &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeInvalidInput,
		Message: "amount must be positive",
	}
	ErrInvalidReference = &DomainError{
		Code:    CodeInvalidInput,
		Message: "malformed hold reference",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    CodeInsufficientBalance,
		Message: "insufficient available balance",
	}
	ErrDepositLimitExceeded = &DomainError{
		Code:    CodeDepositLimitExceeded,
		Message: "rolling deposit limit exceeded",
	}
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "not found",
	}
	ErrHoldNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "hold not found",
	}
	ErrAssetNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "asset not found",
	}
	ErrBusy = &DomainError{
		Code:    CodeBusy,
		Message: "balance is busy, lock wait timed out",
	}
	ErrStoreFailure = &DomainError{
		Code:    CodeStoreFailure,
		Message: "ledger store failure",
	}
)
