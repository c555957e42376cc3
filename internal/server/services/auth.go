// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates registration, login, refresh-token rotation
// and identity resolution over the user and refresh-token stores.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkokor/jwt-based-access-management/internal/common"
	"github.com/mkokor/jwt-based-access-management/internal/dbx"
	"github.com/mkokor/jwt-based-access-management/internal/server/auth"
	"github.com/mkokor/jwt-based-access-management/internal/server/config"
	"github.com/mkokor/jwt-based-access-management/internal/server/models"
	"github.com/mkokor/jwt-based-access-management/internal/server/password"
	"github.com/mkokor/jwt-based-access-management/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token with the refresh-token value
// and expiry the transport puts into the HTTP-only cookie.
type TokenPair struct {
	AccessToken        string
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService provides the authentication operations:
//   - Register: create accounts with salted password hashes
//   - Login: verify credentials and mint a token pair
//   - Refresh: exchange a stored refresh token, rotating it in place
//   - ResolveIdentity: map validated claims back to a user row
//
// Refresh-token lifecycle per user: absent -> active -> (rotated -> active)
// or expired (rejected). At most one token per owner is live at any instant.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account. It rejects taken usernames and weak
// passwords before hashing; the single write happens in one transaction.
// No token is issued at registration.
func (s *AuthService) Register(ctx context.Context, username, plaintext string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	if err := password.Validate(plaintext); err != nil {
		return nil, err
	}

	digest, salt, err := password.Hash(plaintext)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     username,
		PasswordHash: digest,
		PasswordSalt: salt,
		Role:         models.RoleBasicUser,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	}); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and, on success, rotates the user's refresh
// token in place (creating it on first login) and mints a new access token.
// Nothing is issued or persisted before the password check passes.
func (s *AuthService) Login(ctx context.Context, username, plaintext string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}

	if !password.Verify(plaintext, user.PasswordHash, user.PasswordSalt) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a refresh-token value from the cookie for a new token
// pair. Unknown values fail with ErrInvalidToken; expired ones with
// ErrTokenExpired, leaving the stored row untouched. A consumed value is
// overwritten in the same transaction and can never be replayed.
func (s *AuthService) Refresh(ctx context.Context, tokenValue string) (*TokenPair, error) {
	stored, err := s.repomanager.RefreshTokens(s.db).FindByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if stored.Expired(time.Now()) {
		return nil, common.ErrTokenExpired
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, user)
}

// ResolveIdentity maps an already-verified claim set to its user row. The
// claims are passed explicitly; signature and expiry checks are the
// middleware's job, not repeated here.
func (s *AuthService) ResolveIdentity(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, common.ErrNotAuthenticated
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).ListAll(ctx)
}

// issueTokenPair rotates (or creates) the user's refresh-token row inside one
// transaction and signs an access token for the same user.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	next, err := auth.NewRefreshToken(s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	next.UserID = user.ID

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		err := repo.Rotate(ctx, user.ID, next)
		if errors.Is(err, common.ErrorNotFound) {
			return repo.Create(ctx, next)
		}
		return err
	}); err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}

	access, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:        access,
		RefreshToken:       next.Token,
		RefreshTokenExpiry: next.Expires,
	}, nil
}
