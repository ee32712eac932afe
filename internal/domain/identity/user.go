package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_@+.\-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a registered shopper. Orders reference users weakly: deleting a
// user keeps the orders and clears their owner.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		IsActive:          true,
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	user.PasswordHash = passwordHash

	return user, nil
}

// SetEmail sets the user's email. An empty email is allowed.
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	u.Email = email
	u.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate blocks future logins
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

// Validation functions

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 150 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
