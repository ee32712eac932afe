package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthService is the identity use cases used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req identity.RegisterRequest) (*identity.UserResponse, error)
	Login(ctx context.Context, req identity.LoginRequest) (*identity.TokenResponse, error)
	Refresh(ctx context.Context, req identity.RefreshRequest) (*identity.TokenResponse, error)
	Me(ctx context.Context, userID int64) (*identity.UserResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @ID           register
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "New account"
// @Success      201 {object} identity.UserResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @ID           obtainToken
// @Summary      Obtain an access and refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200 {object} identity.TokenResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tokens, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Exchange a refresh token for a new pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh token"
// @Success      200 {object} identity.TokenResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tokens, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Me godoc
// @ID           currentUser
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} identity.UserResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.HandleDomainError(c, shared.ErrUnauthorized)
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
