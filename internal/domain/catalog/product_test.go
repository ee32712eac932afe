package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with derived slug", func(t *testing.T) {
		p, err := NewProduct("Trail Runner 2", "", 1, 2, decimal.RequireFromString("89.999"), 5)
		require.NoError(t, err)
		assert.Equal(t, "trail-runner-2", p.Slug)
		assert.True(t, p.IsActive)
		assert.Equal(t, "90.00", p.Price.StringFixed(2))
		assert.Equal(t, 5, p.Stock)
		assert.False(t, p.IsPersisted())
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct("Widget", "widget", 1, 1, decimal.NewFromInt(1), -1)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_STOCK", domainErr.Code)
	})

	t.Run("rejects negative and oversized prices", func(t *testing.T) {
		_, err := NewProduct("Widget", "widget", 1, 1, decimal.NewFromInt(-1), 0)
		assert.Error(t, err)
		_, err = NewProduct("Widget", "widget", 1, 1, decimal.RequireFromString("1000000"), 0)
		assert.Error(t, err)
	})

	t.Run("requires brand and category", func(t *testing.T) {
		_, err := NewProduct("Widget", "widget", 0, 1, decimal.NewFromInt(1), 0)
		assert.Error(t, err)
		_, err = NewProduct("Widget", "widget", 1, 0, decimal.NewFromInt(1), 0)
		assert.Error(t, err)
	})

	t.Run("rejects invalid slug", func(t *testing.T) {
		_, err := NewProduct("Widget", "has space", 1, 1, decimal.NewFromInt(1), 0)
		assert.Error(t, err)
	})
}

func TestProduct_CanFulfil(t *testing.T) {
	p, err := NewProduct("Widget", "widget", 1, 1, decimal.NewFromInt(10), 3)
	require.NoError(t, err)

	assert.True(t, p.CanFulfil(3))
	assert.False(t, p.CanFulfil(4))
	assert.False(t, p.CanFulfil(0))

	p.Deactivate()
	assert.False(t, p.CanFulfil(1))

	p.Activate()
	assert.True(t, p.CanFulfil(1))
}

func TestProduct_ChangePrice(t *testing.T) {
	p, err := NewProduct("Widget", "widget", 1, 1, decimal.NewFromInt(10), 3)
	require.NoError(t, err)

	require.NoError(t, p.ChangePrice(decimal.RequireFromString("12.5")))
	assert.Equal(t, "12.50", p.Price.StringFixed(2))

	assert.Error(t, p.ChangePrice(decimal.NewFromInt(-3)))
	assert.Equal(t, "12.50", p.Price.StringFixed(2))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crème Brûlée", "creme-brulee"},
		{"  Hello,   World!  ", "hello-world"},
		{"USB-C Cable (2m)", "usb-c-cable-2m"},
		{"snake_case name", "snake_case-name"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
