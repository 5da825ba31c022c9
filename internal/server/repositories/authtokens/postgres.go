package authtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error) {
	query := `INSERT INTO auth_tokens (user_id, access_token, refresh_token, expires_at)
	 VALUES ($1, $2, $3, $4)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		token.UserID, token.AccessToken, token.RefreshToken, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) GetByAccessToken(ctx context.Context, accessToken string) (*models.AuthToken, error) {
	query := `SELECT id, user_id, access_token, refresh_token, expires_at, created_at
	 FROM auth_tokens WHERE access_token = $1`
	return r.scanToken(r.db.QueryRowContext(ctx, query, accessToken))
}

func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthToken, error) {
	query := `SELECT id, user_id, access_token, refresh_token, expires_at, created_at
	 FROM auth_tokens WHERE refresh_token = $1`
	return r.scanToken(r.db.QueryRowContext(ctx, query, refreshToken))
}

func (r *PostgresRepository) DeleteByAccessToken(ctx context.Context, accessToken string) error {
	return r.delete(ctx, `DELETE FROM auth_tokens WHERE access_token = $1`, accessToken)
}

func (r *PostgresRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	return r.delete(ctx, `DELETE FROM auth_tokens WHERE refresh_token = $1`, refreshToken)
}

func (r *PostgresRepository) delete(ctx context.Context, query string, arg string) error {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanToken(row *sql.Row) (*models.AuthToken, error) {
	t := &models.AuthToken{}
	err := row.Scan(&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
