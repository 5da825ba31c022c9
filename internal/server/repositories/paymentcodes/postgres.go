package paymentcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.PaymentCode) (*models.PaymentCode, error) {
	query := `INSERT INTO payment_codes (code, merchant_id, amount, expires_at)
	 VALUES ($1, $2, $3, $4)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		code.Code, code.MerchantID, code.Amount, code.ExpiresAt).
		Scan(&code.ID, &code.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return code, nil
}

func (r *PostgresRepository) GetActiveByCode(ctx context.Context, code string) (*models.PaymentCode, error) {
	query := `SELECT id, code, merchant_id, amount, used, created_at, expires_at
	 FROM payment_codes
	 WHERE code = $1 AND used = FALSE AND expires_at > now()`

	pc := &models.PaymentCode{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&pc.ID, &pc.Code,
		&pc.MerchantID, &pc.Amount, &pc.Used, &pc.CreatedAt, &pc.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PaymentCode, error) {
	query := `SELECT id, code, merchant_id, amount, used, created_at, expires_at
	 FROM payment_codes WHERE id = $1`

	pc := &models.PaymentCode{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&pc.ID, &pc.Code,
		&pc.MerchantID, &pc.Amount, &pc.Used, &pc.CreatedAt, &pc.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pc, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	query := `UPDATE payment_codes SET used = TRUE WHERE id = $1 AND used = FALSE`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
