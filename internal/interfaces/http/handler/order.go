package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets clients retry an order placement safely
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// OrderService is the order use cases used by OrderHandler
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd apptrade.PlaceOrderCommand) (*apptrade.PlaceOrderResult, error)
	ListAll(ctx context.Context) ([]apptrade.OrderResponse, error)
	ListMine(ctx context.Context, userID int64) ([]apptrade.OrderResponse, error)
}

// OrderHandler serves order placement and listings
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder godoc
// @ID           createOrder
// @Summary      Place an order
// @Description  Reserves stock for every line in one transaction. The first failing line rejects the whole cart.
// @Description  Sending an Idempotency-Key makes retries return the original order with status 200.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Client generated key deduplicating retries"
// @Param        request body apptrade.CreateOrderRequest true "Cart"
// @Success      201 {object} apptrade.OrderResponse
// @Success      200 {object} apptrade.OrderResponse "Replay of an earlier placement"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key must be at most 255 characters.")
		return
	}

	var req apptrade.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customer := trade.Customer{Name: req.CustomerName, Email: req.CustomerEmail}
	if userID, ok := middleware.GetUserID(c); ok {
		customer.UserID = &userID
	}

	result, err := h.orders.PlaceOrder(c.Request.Context(), apptrade.PlaceOrderCommand{
		Lines:          req.Items,
		Customer:       customer,
		IdempotencyKey: key,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(status, result.Order)
}

// ListOrders godoc
// @ID           listOrders
// @Summary      List all orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200 {array}  apptrade.OrderResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListMyOrders godoc
// @ID           listMyOrders
// @Summary      List the caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  apptrade.OrderResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /orders/my [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.HandleDomainError(c, shared.ErrUnauthorized)
		return
	}
	orders, err := h.orders.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
