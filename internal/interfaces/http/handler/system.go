package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Pinger checks that a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	db      Pinger
	timeout time.Duration
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db, timeout: 2 * time.Second}
}

// Health godoc
// @ID           health
// @Summary      Liveness and database health
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "ok"})
}
