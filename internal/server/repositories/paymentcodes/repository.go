package paymentcodes

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	// Create persists a new single-use code. A code collision surfaces as
	// common.ErrConflict for the caller to retry.
	Create(ctx context.Context, code *models.PaymentCode) (*models.PaymentCode, error)

	// GetActiveByCode returns the code only if it is unused and unexpired.
	GetActiveByCode(ctx context.Context, code string) (*models.PaymentCode, error)

	// GetByID returns the code regardless of its used/expired state.
	GetByID(ctx context.Context, id string) (*models.PaymentCode, error)

	// MarkUsed flips the used flag and reports whether this call did the
	// flipping. A false result means the code was already consumed.
	MarkUsed(ctx context.Context, id string) (bool, error)
}
