package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"0.01", true},
		{"10", true},
		{"10.5", true},
		{"999999999999.99", true},
		{"0", false},
		{"-1.00", false},
		{"10.001", false},
		{"1000000000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.value))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("25.50")
	assert.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("25.5")))

	_, err = ParseAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransferValidate_AmountCheckedFirst(t *testing.T) {
	transfer := Transfer{Payer: 1, Payee: 1, Value: decimal.Zero}
	assert.ErrorIs(t, transfer.Validate(), ErrInvalidAmount)

	transfer.Value = decimal.NewFromInt(5)
	assert.ErrorIs(t, transfer.Validate(), ErrSelfTransfer)

	transfer.Payee = 2
	assert.NoError(t, transfer.Validate())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
