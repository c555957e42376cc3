// Package users declares the server-side store contract for user accounts.
package users

import (
	"context"

	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// Repository is keyed storage for users; it holds no business logic.
type Repository interface {
	// Create persists a new user and returns it with the store-assigned id
	// and creation timestamp filled in.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByUsername returns the user with the exact username, or a
	// not-found error. The match is case-sensitive.
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByID returns the user with the given id, or a not-found error.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// ListAll returns every user, ordered by creation time.
	ListAll(ctx context.Context) ([]*models.User, error)
}
