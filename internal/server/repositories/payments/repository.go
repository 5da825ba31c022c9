package payments

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	GetByID(ctx context.Context, id string) (*models.Payment, error)

	// UpdateStatusIf moves the payment from `from` to `to` and reports
	// whether this call won the transition.
	UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error)

	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
}
