package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-user stored-value balance. Balance never goes negative;
// every mutation happens through a conditional single-row UPDATE in the
// wallets repository.
type Wallet struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	Currency  string // ISO 4217, e.g. "XOF"
	UpdatedAt time.Time
}
