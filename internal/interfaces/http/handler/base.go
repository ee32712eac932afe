package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Error sends an error body with the given status
func (h *BaseHandler) Error(c *gin.Context, status int, code, detail string) {
	resp := dto.NewErrorResponse(code, detail)
	resp.RequestID = requestID(c)
	c.JSON(status, resp)
}

// NotFound sends the canonical 404 body
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, dto.MsgNotFound)
}

// BadRequest sends a 400 with a validation code
func (h *BaseHandler) BadRequest(c *gin.Context, detail string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, detail)
}

// InternalError sends a 500 without leaking the cause
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, dto.MsgInternal)
}

// BindJSON decodes the body into req and answers 400 on failure. It returns
// false when the handler should stop.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); details != nil {
		resp := dto.NewValidationErrorResponse(details)
		resp.RequestID = requestID(c)
		c.JSON(http.StatusBadRequest, resp)
		return false
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON request body.")
	return false
}

// HandleDomainError converts an application error to an HTTP response.
// Placement errors are always 400 and carry the offending product id.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var placement trade.PlacementError
	if errors.As(err, &placement) {
		resp := dto.NewErrorResponse(placement.Code(), placement.Error())
		if ref := placement.ProductRef(); ref != 0 {
			resp.ProductID = &ref
		}
		resp.RequestID = requestID(c)
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	code := dto.ErrCodeInternal
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}

	switch shared.KindOf(err) {
	case shared.KindValidation:
		h.Error(c, http.StatusBadRequest, code, err.Error())
	case shared.KindNotFound:
		h.NotFound(c)
	case shared.KindConflict:
		h.Error(c, http.StatusConflict, code, err.Error())
	case shared.KindUnauthenticated:
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
		h.Error(c, http.StatusUnauthorized, code, err.Error())
	default:
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
		h.InternalError(c)
	}
}

// queryInt64 parses an optional integer query parameter
func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryInt parses an optional positive integer query parameter
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return v, nil
}
