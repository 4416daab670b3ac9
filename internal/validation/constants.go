package validation

const (
	// Hold references
	MaxRefTypeLength = 32
	MaxRefIDLength   = 128

	// Asset symbols
	MaxSymbolLength = 16

	// Amounts are stored as decimal(36,18)
	MaxAmountScale         = 18
	MaxAmountIntegerDigits = 36 - MaxAmountScale
)
