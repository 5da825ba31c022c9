package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

func (r *PostgresRepository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	query := `INSERT INTO transactions (reference, type, amount, currency, fee, status, wallet_id)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tx.Reference, tx.Type, tx.Amount, tx.Currency, tx.Fee, tx.Status, tx.WalletID).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tx, nil
}

func (r *PostgresRepository) Finalize(ctx context.Context, reference string, status models.TransactionStatus) error {
	if !status.Terminal() {
		return common.ErrInvalidStateTransition
	}

	query := `UPDATE transactions SET status = $1 WHERE reference = $2 AND status = $3`

	res, err := r.db.ExecContext(ctx, query, status, reference, models.TransactionPending)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrInvalidStateTransition
	}
	return nil
}

const txColumns = `id, reference, type, amount, currency, fee, status, wallet_id, created_at`

func (r *PostgresRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE reference = $1`
	return r.scanTransaction(r.db.QueryRowContext(ctx, query, reference))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByWallet(ctx context.Context, walletID string, filter Filter, page Page) ([]*models.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + txColumns + ` FROM transactions WHERE wallet_id = $1`)

	args := []any{walletID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		fmt.Fprintf(&sb, " AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")
	if page.Limit > 0 {
		args = append(args, page.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.Reference, &t.Type, &t.Amount, &t.Currency,
			&t.Fee, &t.Status, &t.WalletID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) scanTransaction(row *sql.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.Reference, &t.Type, &t.Amount, &t.Currency,
		&t.Fee, &t.Status, &t.WalletID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
