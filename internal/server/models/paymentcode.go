package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentCode is a single-use 8-digit merchant payment request. Once Used is
// set it is never reusable; once past ExpiresAt it is invalid even if unused.
type PaymentCode struct {
	ID         string
	Code       string
	MerchantID string
	Amount     decimal.Decimal
	Used       bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
