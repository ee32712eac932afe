package persistence

import (
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isDuplicateKey reports a unique constraint violation. TranslateError covers
// both drivers; the message check catches connections opened without it.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// isForeignKeyViolation reports a foreign key constraint violation
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

// wrapNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound and any other
// failure to a persistence error.
func wrapNotFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return shared.NewPersistenceError(op, err)
}
