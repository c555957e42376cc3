package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkokor/jwt-based-access-management/internal/common"
	"github.com/mkokor/jwt-based-access-management/internal/dbx"
	"github.com/mkokor/jwt-based-access-management/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the owner's refresh-token row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	token.ID = uuid.NewString()

	if _, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.Token, token.CreatedAt, token.Expires); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// FindByOwner returns the single token row of userID.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByOwner(ctx context.Context, userID string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at
		FROM refresh_tokens
		WHERE user_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// FindByValue returns the token row with the given opaque value.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, created_at, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

// Rotate overwrites the owner's row in place: new value, new timestamps,
// same row. A previously issued value stops resolving the moment this
// statement commits.
func (r *PostgresRepository) Rotate(ctx context.Context, userID string, token *models.RefreshToken) error {
	query := `
		UPDATE refresh_tokens
		SET token = $2, created_at = $3, expires_at = $4
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query, userID, token.Token, token.CreatedAt, token.Expires)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	err := row.Scan(&token.ID, &token.UserID, &token.Token, &token.CreatedAt, &token.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}
