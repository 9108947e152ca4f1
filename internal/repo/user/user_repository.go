package user

import (
	"context"

	"github.com/mkrupp/taskcase/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository and returns it with its
	// assigned ID and timestamps.
	// Returns ErrUsernameAlreadyRegistered or ErrEmailAlreadyRegistered if the
	// respective column is already taken.
	CreateUser(ctx context.Context, username, email string, passwordHash []byte, role domain.Role) (*domain.User, error)

	// GetUserByID retrieves a user by their numeric ID.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// GetUserByEmail retrieves a user by their email address.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error)

	// ListUsers returns users ordered by ID, skipping offset rows and
	// returning at most limit rows.
	ListUsers(ctx context.Context, offset, limit int64) ([]domain.User, error)

	// UpdateUser applies the non-nil fields of update to the stored user.
	// Returns the updated user. Returns ErrUserNotFound if no such user exists,
	// ErrUsernameAlreadyRegistered or ErrEmailAlreadyRegistered on conflicts.
	UpdateUser(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)

	// DeleteUser removes a user by ID. Tasks created by the user are removed
	// with it. Returns ErrUserNotFound if no such user exists.
	DeleteUser(ctx context.Context, id int64) error

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
