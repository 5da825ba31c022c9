package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/terangapay/terangapay/internal/logging"
)

// Notifier delivers messages to subscribers. Delivery is best-effort: a
// false result is reported to the caller but never rolls back the operation
// that triggered it.
type Notifier interface {
	Send(ctx context.Context, phone string, message string) bool
}

// LegacyAccount is the read-only record returned by the external account
// directory, used to pre-fill KYC data during registration.
type LegacyAccount struct {
	FirstName  string
	LastName   string
	Email      string
	NationalID string
	Balance    decimal.Decimal
	Currency   string
}

// LegacyDirectory looks up active accounts in the external legacy system.
// A nil account with nil error means the phone has no eligible account.
type LegacyDirectory interface {
	LookupActiveAccount(ctx context.Context, phone string) (*LegacyAccount, error)
}

// LogNotifier is a Notifier that only logs. It stands in until a real SMS
// gateway is attached at the boundary.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, phone string, message string) bool {
	n.logger.Info(ctx, "sms notification", "phone", phone, "message", message)
	return true
}
