package validation

import (
	"regexp"
	"strings"

	"simex/internal/errors"

	"github.com/shopspring/decimal"
)

var (
	refTypePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

	// maxAmount is the first value with too many integer digits to store.
	maxAmount = decimal.New(1, MaxAmountIntegerDigits)
)

// ValidateAmount rejects zero, negative, over-precise and oversized amounts.
// Trailing zeros past MaxAmountScale are fine.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount.Withf("got %s", amount.String())
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return errors.ErrInvalidAmount.Withf("more than %d decimal places", MaxAmountScale)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return errors.ErrInvalidAmount.Withf("more than %d integer digits", MaxAmountIntegerDigits)
	}
	return nil
}

// ValidateBalance rejects a balance side the store cannot hold.
func ValidateBalance(value decimal.Decimal) error {
	if value.GreaterThanOrEqual(maxAmount) {
		return errors.ErrInvalidAmount.Withf("balance would exceed %d integer digits", MaxAmountIntegerDigits)
	}
	return nil
}

// ParseAmount parses a decimal string and validates it.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.ErrInvalidAmount.Withf("%q is not a decimal", raw)
	}
	return amount, ValidateAmount(amount)
}

// NormalizeReference trims the reference pair and upper-cases the type.
// Both parts are required.
func NormalizeReference(refType, refID string) (string, string, error) {
	refType = strings.ToUpper(strings.TrimSpace(refType))
	refID = strings.TrimSpace(refID)

	if refType == "" || refID == "" {
		return "", "", errors.ErrInvalidReference.Withf("ref type and ref id are required")
	}
	if len(refType) > MaxRefTypeLength || !refTypePattern.MatchString(refType) {
		return "", "", errors.ErrInvalidReference.Withf("ref type %q", refType)
	}
	if len(refID) > MaxRefIDLength {
		return "", "", errors.ErrInvalidReference.Withf("ref id longer than %d", MaxRefIDLength)
	}
	return refType, refID, nil
}

// NormalizeSymbol upper-cases an asset symbol.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > MaxSymbolLength {
		return "", errors.ErrInvalidInput.Withf("asset symbol %q", symbol)
	}
	return symbol, nil
}

func ValidateUserID(userID uint) error {
	if userID == 0 {
		return errors.ErrInvalidInput.Withf("user id is required")
	}
	return nil
}
