package transfers

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

const transferColumns = `id, transaction_id, sender_user_id, recipient_phone,
	recipient_name, note, status, expires_at, created_at`

func (r *PostgresRepository) Create(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	query := `INSERT INTO transfers
	 (transaction_id, sender_user_id, recipient_phone, recipient_name, note, status, expires_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		transfer.TransactionID, transfer.SenderUserID, transfer.RecipientPhone,
		transfer.RecipientName, transfer.Note, transfer.Status, transfer.ExpiresAt).
		Scan(&transfer.ID, &transfer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return transfer, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	t := &models.Transfer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.TransactionID,
		&t.SenderUserID, &t.RecipientPhone, &t.RecipientName, &t.Note,
		&t.Status, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error) {
	query := `UPDATE transfers SET status = $1 WHERE id = $2 AND status = $3`

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

func (r *PostgresRepository) ListBySender(ctx context.Context, senderUserID string, limit, offset int) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
	 WHERE sender_user_id = $1
	 ORDER BY created_at DESC
	 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, senderUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Transfer
	for rows.Next() {
		t := &models.Transfer{}
		if err := rows.Scan(&t.ID, &t.TransactionID, &t.SenderUserID,
			&t.RecipientPhone, &t.RecipientName, &t.Note,
			&t.Status, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}
