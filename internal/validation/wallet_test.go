package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"simex/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive", amount: "10.5"},
		{name: "smallest unit", amount: "0.000000000000000001"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-1", wantErr: true},
		{name: "too precise", amount: "0.0000000000000000001", wantErr: true},
		{name: "padded trailing zeros", amount: "1.000000000000000000000"},
		{name: "largest storable", amount: "999999999999999999.999999999999999999"},
		{name: "too many integer digits", amount: "1000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBalance(t *testing.T) {
	assert.NoError(t, ValidateBalance(decimal.RequireFromString("999999999999999999.999999999999999999")))
	assert.True(t, stderrors.Is(ValidateBalance(decimal.New(1, 18)), errors.ErrInvalidAmount))
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 250.75 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("250.75")))

	_, err = ParseAmount("abc")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))
}

func TestNormalizeReference(t *testing.T) {
	refType, refID, err := NormalizeReference(" order ", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, "ORDER", refType)
	assert.Equal(t, "42", refID)

	_, _, err = NormalizeReference("", "42")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))

	_, _, err = NormalizeReference("ORDER", "")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidReference))

	_, _, err = NormalizeReference("ORDER-1", "42")
	assert.Error(t, err)

	_, _, err = NormalizeReference("ORDER", strings.Repeat("x", MaxRefIDLength+1))
	assert.Error(t, err)
}

func TestNormalizeSymbol(t *testing.T) {
	symbol, err := NormalizeSymbol("usdt")
	require.NoError(t, err)
	assert.Equal(t, "USDT", symbol)

	_, err = NormalizeSymbol("  ")
	assert.Error(t, err)
}
