package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fraction digits kept for every balance and value.
const MoneyScale = 2

// maxAmount keeps values inside NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

// ValidateAmount checks that v is strictly positive, fits the ledger column and has no
// more than two fraction digits.
func ValidateAmount(v decimal.Decimal) error {
	if !v.IsPositive() || v.GreaterThanOrEqual(maxAmount) {
		return ErrInvalidAmount
	}
	if !v.Equal(v.Truncate(MoneyScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses a decimal string and validates it as a movement value.
func ParseAmount(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}
