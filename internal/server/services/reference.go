package services

import (
	"context"
	"errors"
	"time"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/server/models"
	"github.com/terangapay/terangapay/internal/server/repositories/transactions"
)

// referenceRetries bounds how often a colliding reference is regenerated.
// The timestamp plus six random digits makes collisions vanishingly rare, so
// hitting the bound means something else is wrong.
const referenceRetries = 3

const referenceDigits = 6

// newReference builds a journal reference: "OM" + second-resolution
// timestamp + random digits. Uniqueness is ultimately enforced by the
// database constraint; the random tail keeps concurrent generators apart.
func newReference(now time.Time) (string, error) {
	digits, err := common.MakeRandDigits(referenceDigits)
	if err != nil {
		return "", err
	}
	return "OM" + now.Format("20060102150405") + digits, nil
}

// recordTransaction persists tx in pending status, regenerating the
// reference on a uniqueness collision.
func recordTransaction(ctx context.Context, repo transactions.Repository, tx *models.Transaction) (*models.Transaction, error) {
	for range referenceRetries {
		ref, err := newReference(time.Now())
		if err != nil {
			return nil, common.ErrInternal
		}
		tx.Reference = ref

		created, err := repo.Create(ctx, tx)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, err
		}
	}
	return nil, common.ErrInternal
}
