package dto

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageResponse(t *testing.T) {
	base, err := url.Parse("http://shop.test/api/products?search=lamp&page=2")
	require.NoError(t, err)

	t.Run("middle page links both ways", func(t *testing.T) {
		page := NewPageResponse([]int{4, 5, 6}, 9, 2, true, true, base)
		assert.Equal(t, int64(9), page.Count)
		require.NotNil(t, page.Next)
		require.NotNil(t, page.Previous)
		assert.Equal(t, "http://shop.test/api/products?page=3&search=lamp", *page.Next)
		assert.Equal(t, "http://shop.test/api/products?search=lamp", *page.Previous)
	})

	t.Run("single page has no links and never null results", func(t *testing.T) {
		page := NewPageResponse[int](nil, 0, 1, false, false, base)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Previous)
		assert.NotNil(t, page.Results)
		assert.Empty(t, page.Results)
	})

	t.Run("base is not mutated", func(t *testing.T) {
		NewPageResponse([]int{1}, 20, 2, true, true, base)
		assert.Equal(t, "page=2&search=lamp", base.Query().Encode())
	})
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, GetHTTPStatus(ErrCodeTokenInvalid))
	assert.Equal(t, http.StatusTooManyRequests, GetHTTPStatus(ErrCodeRateLimited))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse([]ValidationDetail{{Field: "password", Message: "This field is required"}})
	assert.Equal(t, ErrCodeValidation, resp.Code)
	assert.Len(t, resp.Errors, 1)
}
