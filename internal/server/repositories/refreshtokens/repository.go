// Package refreshtokens declares the server-side store contract for refresh
// tokens. Each user owns at most one row; rotation overwrites it in place.
package refreshtokens

import (
	"context"

	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// Repository is keyed storage for refresh tokens.
type Repository interface {
	// Create stores the first refresh token of token.UserID. The caller
	// provides value and timestamps; the store assigns the row id.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindByOwner returns the owner's single token row, or a not-found error.
	FindByOwner(ctx context.Context, userID string) (*models.RefreshToken, error)

	// FindByValue looks a token up by its opaque value, or returns a
	// not-found error. The value is the bearer credential from the cookie.
	FindByValue(ctx context.Context, token string) (*models.RefreshToken, error)

	// Rotate overwrites the owner's existing row with token's value and
	// timestamps, keeping the row identity. Returns a not-found error when
	// the owner has no row to rotate.
	Rotate(ctx context.Context, userID string, token *models.RefreshToken) error
}
