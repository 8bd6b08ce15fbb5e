package kernel

import (
	"strings"

	"pharmadelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in Brazilian reais.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds to cents and rejects negative amounts.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("price", amount.String(), 0, "unbounded")
	}
	return Money{amount: amount.Round(2)}, nil
}

// ParseMoney accepts a decimal literal with a dot separator, e.g. "12.50".
func ParseMoney(s string) (Money, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("price", err)
	}
	return NewMoney(amount)
}

// MustMoney parses a decimal literal and panics on failure. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := NewMoney(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the display form stored as `price`, e.g. "R$ 12,50".
func (m Money) String() string {
	return "R$ " + strings.Replace(m.amount.StringFixed(2), ".", ",", 1)
}
