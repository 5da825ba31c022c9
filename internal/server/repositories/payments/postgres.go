package payments

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

const paymentColumns = `id, transaction_id, user_id, merchant_id, mode,
	COALESCE(artifact_id::text, ''), status, expires_at, created_at`

func (r *PostgresRepository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	query := `INSERT INTO payments
	 (transaction_id, user_id, merchant_id, mode, artifact_id, status, expires_at)
	 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		payment.TransactionID, payment.UserID, payment.MerchantID, payment.Mode,
		payment.ArtifactID, payment.Status, payment.ExpiresAt).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payment, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p := &models.Payment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.TransactionID,
		&p.UserID, &p.MerchantID, &p.Mode, &p.ArtifactID,
		&p.Status, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error) {
	query := `UPDATE payments SET status = $1 WHERE id = $2 AND status = $3`

	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
	 WHERE user_id = $1
	 ORDER BY created_at DESC
	 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.UserID, &p.MerchantID,
			&p.Mode, &p.ArtifactID, &p.Status, &p.ExpiresAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}
