package repository

import (
	"context"

	"github.com/utafrali/commerce-auth/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}
