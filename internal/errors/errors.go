// Package errors defines the domain error type shared by the ledger packages.
// A DomainError carries a stable Code; errors.Is matches on that code, so a
// sentinel still matches after details have been attached to it.
package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeDepositLimitExceeded = "DEPOSIT_LIMIT_EXCEEDED"
	CodeNotFound             = "NOT_FOUND"
	CodeBusy                 = "BUSY"
	CodeStoreFailure         = "STORE_FAILURE"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying err as its cause.
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: err}
}

// Withf returns a copy of e with a formatted detail appended to the message.
func (e *DomainError) Withf(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsDomain reports whether err carries a DomainError.
func IsDomain(err error) bool {
	return CodeOf(err) != ""
}
