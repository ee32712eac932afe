// Package auth issues and validates the bearer tokens of the storefront API.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the claims carried by access and refresh tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// TokenPair is an access and refresh token pair
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// JWTService signs and validates HS256 tokens. Refresh tokens use their own
// secret when one is configured.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	now               func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		now:               time.Now,
	}
}

// GenerateTokenPair issues a fresh access and refresh token for a user
func (s *JWTService) GenerateTokenPair(userID int64, username string) (*TokenPair, error) {
	now := s.now()

	access, err := s.sign(s.claims(userID, username, TokenTypeAccess, now, s.accessExpiration), s.accessSecret)
	if err != nil {
		return nil, err
	}
	// The refresh token carries no username: it is only good for a new pair.
	refresh, err := s.sign(s.claims(userID, "", TokenTypeRefresh, now, s.refreshExpiration), s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
	}, nil
}

// RefreshTokenPair validates a refresh token and issues a new pair for its user
func (s *JWTService) RefreshTokenPair(refreshToken string, username string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.GenerateTokenPair(claims.UserID, username)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

func (s *JWTService) claims(userID int64, username string, typ TokenType, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID,
		Username:  username,
		TokenType: typ,
	}
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *JWTService) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID <= 0 {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
