package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user. A taken username yields shared.ErrAlreadyExists.
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID. Orders owned by the user lose their owner.
	Delete(ctx context.Context, id int64) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
