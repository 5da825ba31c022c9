package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
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

func (r *PostgresRepository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	query := `INSERT INTO wallets (user_id, balance, currency)
	 VALUES ($1, $2, $3)
	 RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query, wallet.UserID, wallet.Balance, wallet.Currency).
		Scan(&wallet.ID, &wallet.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return wallet, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	query := `SELECT id, user_id, balance, currency, updated_at FROM wallets WHERE id = $1`
	return r.scanWallet(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	query := `SELECT id, user_id, balance, currency, updated_at FROM wallets WHERE user_id = $1`
	return r.scanWallet(r.db.QueryRowContext(ctx, query, userID))
}

// Debit is the only code path that can lower a balance. The balance >= amount
// predicate makes the subtraction conditional and atomic in one statement, so
// two racing debits on the same wallet serialize on the row and the loser
// either succeeds against the remaining balance or fails cleanly.
func (r *PostgresRepository) Debit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE wallets
	 SET balance = balance - $1, updated_at = now()
	 WHERE id = $2 AND balance >= $1
	 RETURNING balance`

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, amount, walletID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, r.classifyDebitFailure(ctx, walletID)
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

// classifyDebitFailure distinguishes a missing wallet from an uncovered
// amount after a conditional debit matched no row.
func (r *PostgresRepository) classifyDebitFailure(ctx context.Context, walletID string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, walletID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return common.ErrWalletNotFound
	}
	return common.ErrInsufficientFunds
}

func (r *PostgresRepository) Credit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE wallets
	 SET balance = balance + $1, updated_at = now()
	 WHERE id = $2
	 RETURNING balance`

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, amount, walletID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, common.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) scanWallet(row *sql.Row) (*models.Wallet, error) {
	w := &models.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrWalletNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}
