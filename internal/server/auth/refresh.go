package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// refreshTokenBytes is the entropy of a refresh-token value; the hex form is
// twice as long.
const refreshTokenBytes = 32

// NewRefreshToken generates an opaque refresh token valid for the given
// duration. The value comes straight from crypto/rand and carries no user
// data. Owner and row id are assigned by the caller; no store is touched here.
func NewRefreshToken(validity time.Duration) (*models.RefreshToken, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	now := time.Now()
	return &models.RefreshToken{
		Token:     hex.EncodeToString(b),
		CreatedAt: now,
		Expires:   now.Add(validity),
	}, nil
}
