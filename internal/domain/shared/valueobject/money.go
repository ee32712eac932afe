package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is the default currency for the store
const DefaultCurrency = USD

// MoneyPlaces is the number of decimal places stored for every price and total
const MoneyPlaces int32 = 2

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// FromDecimal creates Money in the default currency
func FromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{
		amount:   m.amount.Mul(decimal.NewFromInt(factor)),
		currency: m.currency,
	}
}

// Round returns a new Money rounded half away from zero to the given places
func (m Money) Round(places int32) Money {
	return Money{
		amount:   m.amount.Round(places),
		currency: m.currency,
	}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyPlaces), m.currency)
}

// StringFixed returns the amount as a string with fixed decimal places
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}
