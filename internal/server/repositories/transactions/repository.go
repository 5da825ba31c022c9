// Package transactions is the append-only journal of money movements.
package transactions

import (
	"context"
	"time"

	"github.com/terangapay/terangapay/internal/server/models"
)

// Filter narrows ListByWallet results. Zero values mean "no constraint".
type Filter struct {
	Type   models.TransactionType
	Status models.TransactionStatus
	From   time.Time
	To     time.Time
}

type Page struct {
	Limit  int
	Offset int
}

type Repository interface {
	// Create persists a transaction in pending status. The caller supplies
	// the reference; a unique-violation surfaces as common.ErrConflict so
	// the journal service can retry with a fresh one.
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// Finalize transitions reference from pending to the given terminal
	// status via compare-and-swap. A transaction that is absent or already
	// finalized yields common.ErrInvalidStateTransition and nothing changes.
	Finalize(ctx context.Context, reference string, status models.TransactionStatus) error

	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	ListByWallet(ctx context.Context, walletID string, filter Filter, page Page) ([]*models.Transaction, error)
}
