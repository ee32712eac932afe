package persistence

import (
	"context"
	"strings"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "A user with that username already exists.")
		}
		return shared.NewPersistenceError("create user", err)
	}
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Select("email", "password_hash", "is_active", "last_login_at", "updated_at").
		Updates(model)
	if result.Error != nil {
		return shared.NewPersistenceError("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a user by ID. The orders.user_id foreign key is SET NULL.
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "find user")
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a user by username, ignoring case
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&model).Error; err != nil {
		return nil, wrapNotFound(err, "find user by username")
	}
	return model.ToDomain(), nil
}

// ExistsByUsername checks if a username already exists, ignoring case
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("check username", err)
	}
	return count > 0, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
