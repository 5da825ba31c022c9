// Package wallets is the ledger store. All balance mutations go through
// Debit and Credit, which are single conditional UPDATEs: per-wallet
// serialization comes from the database's row-level atomicity, never from a
// process-wide lock.
package wallets

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)

	// Debit atomically subtracts amount iff the balance covers it, returning
	// the new balance. Fails with common.ErrInsufficientFunds otherwise,
	// leaving the wallet untouched.
	Debit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Credit atomically adds amount and returns the new balance.
	Credit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error)
}
