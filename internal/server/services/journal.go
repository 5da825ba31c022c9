package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/server/models"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
	"github.com/terangapay/terangapay/internal/server/repositories/transactions"
)

// JournalService is the read side of the transaction journal: receipts
// lookup by reference and per-wallet history.
type JournalService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewJournalService(db *sql.DB, m repomanager.RepositoryManager) *JournalService {
	return &JournalService{db: db, repomanager: m}
}

// Find returns the journal entry for a reference.
func (s *JournalService) Find(ctx context.Context, reference string) (*models.Transaction, error) {
	tx, err := s.repomanager.Transactions(s.db).GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return tx, nil
}

// HistoryForUser lists the journal entries of the caller's wallet, newest
// first, honoring the given filter and page.
func (s *JournalService) HistoryForUser(ctx context.Context, userID string, filter transactions.Filter, page transactions.Page) ([]*models.Transaction, error) {
	wallet, err := s.repomanager.Wallets(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			return nil, common.ErrWalletNotFound
		}
		return nil, common.ErrInternal
	}

	if page.Limit <= 0 {
		page.Limit = 20
	}

	list, err := s.repomanager.Transactions(s.db).ListByWallet(ctx, wallet.ID, filter, page)
	if err != nil {
		return nil, common.ErrInternal
	}
	return list, nil
}
