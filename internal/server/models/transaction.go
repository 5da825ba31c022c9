package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypePayment  TransactionType = "payment"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionExpired   TransactionStatus = "expired"
)

// Terminal reports whether s permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s != TransactionPending
}

// Transaction is the journal record of a money movement. Once finalized it
// is immutable; the only legal mutation is pending -> terminal status.
type Transaction struct {
	ID        string
	Reference string // globally unique, "OM" + timestamp + random digits
	Type      TransactionType
	Amount    decimal.Decimal
	Currency  string
	Fee       decimal.Decimal
	Status    TransactionStatus
	WalletID  string // wallet primarily debited
	CreatedAt time.Time
}
