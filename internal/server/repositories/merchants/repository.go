package merchants

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, merchant *models.Merchant) (*models.Merchant, error)
	GetByID(ctx context.Context, id string) (*models.Merchant, error)
	GetActiveByCode(ctx context.Context, code string) (*models.Merchant, error)
}
