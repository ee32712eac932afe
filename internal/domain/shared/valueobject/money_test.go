package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.50")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.Equal(t, "123.45", m.StringFixed(2))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("line totals accumulate without drift", func(t *testing.T) {
		a := FromDecimal(decimal.RequireFromString("10.00")).MultiplyByInt(2)
		b := FromDecimal(decimal.RequireFromString("3.50")).MultiplyByInt(1)

		total := Zero(DefaultCurrency).MustAdd(a).MustAdd(b)

		assert.Equal(t, "23.50", total.StringFixed(MoneyPlaces))
		assert.True(t, total.Equals(FromDecimal(decimal.RequireFromString("23.5"))))
	})

	t.Run("many cents sum exactly", func(t *testing.T) {
		total := Zero(DefaultCurrency)
		cent := FromDecimal(decimal.RequireFromString("0.10"))
		for i := 0; i < 1000; i++ {
			total = total.MustAdd(cent)
		}
		assert.Equal(t, "100.00", total.StringFixed(MoneyPlaces))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		usd := Zero(USD)
		eur := Zero(EUR)
		_, err := usd.Add(eur)
		assert.Error(t, err)
		assert.Panics(t, func() { usd.MustAdd(eur) })
	})

	t.Run("round uses half away from zero", func(t *testing.T) {
		m := FromDecimal(decimal.RequireFromString("2.345"))
		assert.Equal(t, "2.35", m.Round(2).StringFixed(2))
	})
}

func TestMoney_String(t *testing.T) {
	m := FromDecimal(decimal.RequireFromString("9.9"))
	assert.Equal(t, "9.90 USD", m.String())
	assert.False(t, m.IsZero())
	assert.False(t, m.IsNegative())
}
