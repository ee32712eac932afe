package identity

import "github.com/storefront/backend/internal/domain/identity"

// RegisterRequest is the body of a registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the body of a token request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of a token refresh
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}
