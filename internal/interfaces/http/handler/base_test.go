package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// asUser simulates the auth middleware for the given user
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID)
		c.Next()
	}
}

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		detail    string
		productID *int64
	}{
		{
			name:   "empty cart",
			err:    &trade.EmptyCartError{},
			status: http.StatusBadRequest,
			code:   "EMPTY_CART",
			detail: "No items provided.",
		},
		{
			name:      "invalid quantity names the product",
			err:       &trade.InvalidQuantityError{ProductID: 7, Quantity: 0},
			status:    http.StatusBadRequest,
			code:      "INVALID_QUANTITY",
			productID: int64Ptr(7),
		},
		{
			name:      "missing product is a 400 during placement",
			err:       fmt.Errorf("line 2: %w", &trade.ProductNotFoundError{ProductID: 99}),
			status:    http.StatusBadRequest,
			code:      "PRODUCT_NOT_FOUND",
			detail:    "Product with id 99 not found.",
			productID: int64Ptr(99),
		},
		{
			name:      "insufficient stock is a 400 during placement",
			err:       &trade.InsufficientStockError{ProductID: 3, ProductName: "Mug", Requested: 5, Available: 2},
			status:    http.StatusBadRequest,
			code:      "INSUFFICIENT_STOCK",
			productID: int64Ptr(3),
		},
		{
			name:   "not found",
			err:    shared.ErrNotFound,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
			detail: "Not found.",
		},
		{
			name:   "validation",
			err:    shared.ErrInvalidInput,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:   "conflict",
			err:    shared.ErrAlreadyExists,
			status: http.StatusConflict,
			code:   "ALREADY_EXISTS",
		},
		{
			name:   "unauthenticated",
			err:    shared.ErrUnauthorized,
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{
			name:   "persistence failure hides the cause",
			err:    shared.NewPersistenceError("insert order", errors.New("connection reset")),
			status: http.StatusInternalServerError,
			code:   dto.ErrCodeInternal,
			detail: dto.MsgInternal,
		},
		{
			name:   "unclassified error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   dto.ErrCodeInternal,
			detail: dto.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			h := &BaseHandler{}
			engine.GET("/", func(c *gin.Context) {
				c.Set("request_id", "req-1")
				h.HandleDomainError(c, tt.err)
			})

			w := testutil.Do(t, engine, http.MethodGet, "/", nil)

			assert.Equal(t, tt.status, w.Code)
			resp := testutil.DecodeJSON[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "req-1", resp.RequestID)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, resp.Detail)
			}
			assert.Equal(t, tt.productID, resp.ProductID)
		})
	}
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}

	engine := gin.New()
	h := &BaseHandler{}
	engine.POST("/", func(c *gin.Context) {
		var p payload
		if !h.BindJSON(c, &p) {
			return
		}
		c.JSON(http.StatusOK, p)
	})

	t.Run("valid body", func(t *testing.T) {
		w := testutil.Do(t, engine, http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := testutil.Do(t, engine, http.MethodPost, "/", strings.NewReader(`{"email":`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, testutil.DecodeJSON[dto.ErrorResponse](t, w).Code)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		w := testutil.Do(t, engine, http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := testutil.DecodeJSON[dto.ErrorResponse](t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "email", resp.Errors[0].Field)
		assert.Equal(t, "Enter a valid email address.", resp.Errors[0].Message)
	})
}

func int64Ptr(v int64) *int64 { return &v }
