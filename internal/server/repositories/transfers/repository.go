package transfers

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	GetByID(ctx context.Context, id string) (*models.Transfer, error)

	// UpdateStatusIf moves the transfer from `from` to `to` and reports
	// whether this call won the transition. A false result with nil error
	// means another writer got there first (or the row is absent).
	UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error)

	ListBySender(ctx context.Context, senderUserID string, limit, offset int) ([]*models.Transfer, error)
}
