// Package auth issues and verifies the two credentials of the service:
// HS256-signed JWTs carrying identity claims, and opaque refresh tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkokor/jwt-based-access-management/internal/common"
	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// Claims is the claim set embedded in every access token: the registered
// claims plus the user's name and role. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"name"`
	Role     string `json:"role"`
}

// GenerateToken signs a short-lived access token for the user.
func GenerateToken(user *models.User, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Username: user.Username,
		Role:     user.Role,
	})

	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry of an access token and returns
// its claims. Expired tokens map to common.ErrTokenExpired, everything else
// that fails verification to common.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
