package models

import "time"

type PaymentMode string

const (
	PaymentModeQRCode      PaymentMode = "qr_code"
	PaymentModeNumericCode PaymentMode = "numeric_code"
)

// Payment is the merchant-payment detail of a Transaction.
type Payment struct {
	ID            string
	TransactionID string
	UserID        string
	MerchantID    string
	Mode          PaymentMode
	ArtifactID    string // payment code consumed on confirmation, empty for ad-hoc QR
	Status        TransactionStatus
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
