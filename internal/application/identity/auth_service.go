package identity

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password
	ErrInvalidCredentials = shared.NewClassifiedError(shared.KindUnauthenticated, "INVALID_CREDENTIALS",
		"No active account found with the given credentials.")
	// ErrInvalidRefreshToken is returned when a refresh token is malformed, expired or of the wrong type
	ErrInvalidRefreshToken = shared.NewClassifiedError(shared.KindUnauthenticated, "TOKEN_INVALID",
		"Token is invalid or expired.")
	// ErrUsernameTaken is returned when registering an existing username
	ErrUsernameTaken = shared.NewClassifiedError(shared.KindValidation, "USERNAME_TAKEN",
		"A user with that username already exists.")
)

// TokenIssuer issues and validates JWT pairs
type TokenIssuer interface {
	GenerateTokenPair(userID int64, username string) (*auth.TokenPair, error)
	ValidateRefreshToken(token string) (*auth.Claims, error)
}

// AuthService registers users and issues tokens
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a new active user. Usernames are unique ignoring case.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration of the same name
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifies the credentials and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Login for unknown user", zap.String("username", req.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CanLogin() || !user.VerifyPassword(req.Password) {
		s.logger.Info("Login rejected", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The tokens are valid either way
		s.logger.Warn("Failed to record login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return &TokenResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken}, nil
}

// Refresh exchanges a refresh token for a new pair. The user must still exist
// and be active.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(req.Refresh)
	if err != nil {
		s.logger.Info("Refresh token rejected", zap.Error(err))
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken}, nil
}

// Me returns the profile of an authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}
