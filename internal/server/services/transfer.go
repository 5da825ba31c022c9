package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/cryptox"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/logging"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/models"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
)

// PendingTransfer is the result of a successful initiation. Nothing has been
// debited yet; the caller has until ExpiresAt to confirm.
type PendingTransfer struct {
	Transfer    *models.Transfer
	Transaction *models.Transaction
	Fee         decimal.Decimal
	Total       decimal.Decimal
	ExpiresAt   time.Time
}

// CompletedTransfer is the result of a confirmed transfer.
type CompletedTransfer struct {
	Transfer      *models.Transfer
	Transaction   *models.Transaction
	SenderBalance decimal.Decimal
	ReceiptURL    string
}

// TransferService orchestrates peer-to-peer transfers: fee computation,
// pending creation, PIN-gated confirmation against the ledger, cancellation,
// and lazy expiry.
type TransferService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	receipts      *ReceiptService
	logger        logging.Logger
	pendingWindow time.Duration
}

func NewTransferService(db *sql.DB, m repomanager.RepositoryManager, receipts *ReceiptService, logger logging.Logger, cfg *config.Config) *TransferService {
	return &TransferService{
		db:            db,
		repomanager:   m,
		receipts:      receipts,
		logger:        logger,
		pendingWindow: cfg.PendingWindow,
	}
}

// Initiate creates a pending transfer after validating the recipient and the
// sender's balance. The self-transfer check runs before any balance check.
// No ledger mutation happens here.
func (s *TransferService) Initiate(ctx context.Context, senderUserID, recipientPhone string, amount decimal.Decimal, currency, note string) (*PendingTransfer, error) {
	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}

	recipient, err := s.repomanager.Users(s.db).GetByPhone(ctx, recipientPhone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrRecipientNotFound
		}
		return nil, common.ErrInternal
	}
	if recipient.ID == senderUserID {
		return nil, common.ErrSelfTransfer
	}

	fee := TransferFee(amount)
	total := amount.Add(fee)

	senderWallet, err := s.repomanager.Wallets(s.db).GetByUserID(ctx, senderUserID)
	if err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			return nil, common.ErrWalletNotFound
		}
		return nil, common.ErrInternal
	}
	if senderWallet.Balance.LessThan(total) {
		return nil, common.ErrInsufficientFunds
	}

	expiresAt := time.Now().Add(s.pendingWindow)

	var journalTx *models.Transaction
	var transfer *models.Transfer
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		journalTx, err = recordTransaction(ctx, s.repomanager.Transactions(tx), &models.Transaction{
			Type:     models.TransactionTypeTransfer,
			Amount:   amount,
			Currency: currency,
			Fee:      fee,
			Status:   models.TransactionPending,
			WalletID: senderWallet.ID,
		})
		if err != nil {
			return err
		}

		transfer, err = s.repomanager.Transfers(tx).Create(ctx, &models.Transfer{
			TransactionID:  journalTx.ID,
			SenderUserID:   senderUserID,
			RecipientPhone: recipient.Phone,
			RecipientName:  recipient.FirstName + " " + recipient.LastName,
			Note:           note,
			Status:         models.TransactionPending,
			ExpiresAt:      expiresAt,
		})
		return err
	})
	if err != nil {
		if _, ok := common.IsDomain(err); ok {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "transfer initiated",
		"transfer_id", transfer.ID, "reference", journalTx.Reference,
		"amount", amount.String(), "fee", fee.String())

	return &PendingTransfer{
		Transfer:    transfer,
		Transaction: journalTx,
		Fee:         fee,
		Total:       total,
		ExpiresAt:   expiresAt,
	}, nil
}

// Confirm applies a pending transfer: PIN check, then a single database
// transaction that wins the pending->confirmed transition, debits the sender
// amount+fee, credits the recipient, and finalizes the journal entry. A
// failed PIN leaves the transfer pending; a lost race yields
// ErrAlreadyProcessed; an expired pending record transitions to expired.
func (s *TransferService) Confirm(ctx context.Context, senderUserID, transferID, pin string) (*CompletedTransfer, error) {
	transfer, journalTx, err := s.loadOwnedPending(ctx, senderUserID, transferID)
	if err != nil {
		return nil, err
	}

	if time.Now().After(transfer.ExpiresAt) {
		s.expire(ctx, transfer, journalTx)
		return nil, common.ErrPendingExpired
	}

	sender, err := s.repomanager.Users(s.db).GetByID(ctx, senderUserID)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !cryptox.CheckPin(sender.PinHash, pin) {
		return nil, common.ErrIncorrectPin
	}

	// only a definitive "recipient is gone" consumes the pending record; a
	// storage failure leaves it pending so the caller can retry
	recipient, err := s.repomanager.Users(s.db).GetByPhone(ctx, transfer.RecipientPhone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, s.fail(ctx, transfer, journalTx, common.ErrRecipientNotFound)
		}
		return nil, common.ErrInternal
	}
	recipientWallet, err := s.repomanager.Wallets(s.db).GetByUserID(ctx, recipient.ID)
	if err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			return nil, s.fail(ctx, transfer, journalTx, common.ErrRecipientNotFound)
		}
		return nil, common.ErrInternal
	}

	total := journalTx.Amount.Add(journalTx.Fee)

	var senderBalance decimal.Decimal
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Transfers(tx).UpdateStatusIf(ctx, transfer.ID,
			models.TransactionPending, models.TransactionConfirmed)
		if err != nil {
			return err
		}
		if !won {
			return common.ErrAlreadyProcessed
		}

		walletsTx := s.repomanager.Wallets(tx)
		senderBalance, err = walletsTx.Debit(ctx, journalTx.WalletID, total)
		if err != nil {
			return err
		}
		if _, err := walletsTx.Credit(ctx, recipientWallet.ID, journalTx.Amount); err != nil {
			return err
		}

		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionConfirmed)
	})
	if err != nil {
		if errors.Is(err, common.ErrInsufficientFunds) {
			// the pending hold was outrun by another debit; the rollback kept
			// everything untouched, so record the terminal failure explicitly
			return nil, s.fail(ctx, transfer, journalTx, common.ErrInsufficientFunds)
		}
		if _, ok := common.IsDomain(err); ok {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	transfer.Status = models.TransactionConfirmed
	journalTx.Status = models.TransactionConfirmed

	receiptURL := ""
	if s.receipts != nil {
		receiptURL, err = s.receipts.URLFor(ctx, journalTx.Reference)
		if err != nil {
			s.logger.Warn(ctx, "receipt presign failed", "reference", journalTx.Reference, "error", err)
			receiptURL = ""
		}
	}

	s.logger.Info(ctx, "transfer confirmed",
		"transfer_id", transfer.ID, "reference", journalTx.Reference)

	return &CompletedTransfer{
		Transfer:      transfer,
		Transaction:   journalTx,
		SenderBalance: senderBalance,
		ReceiptURL:    receiptURL,
	}, nil
}

// Cancel voids a pending transfer without a PIN check. Expiry is enforced
// the same way as for Confirm.
func (s *TransferService) Cancel(ctx context.Context, senderUserID, transferID string) error {
	transfer, journalTx, err := s.loadOwnedPending(ctx, senderUserID, transferID)
	if err != nil {
		return err
	}

	if time.Now().After(transfer.ExpiresAt) {
		s.expire(ctx, transfer, journalTx)
		return common.ErrPendingExpired
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Transfers(tx).UpdateStatusIf(ctx, transfer.ID,
			models.TransactionPending, models.TransactionCancelled)
		if err != nil {
			return err
		}
		if !won {
			return common.ErrAlreadyProcessed
		}
		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionCancelled)
	})
	if err != nil {
		if _, ok := common.IsDomain(err); ok {
			return err
		}
		return common.ErrInternal
	}

	s.logger.Info(ctx, "transfer cancelled", "transfer_id", transfer.ID, "reference", journalTx.Reference)
	return nil
}

// Get returns a transfer with its journal entry, only to its sender.
func (s *TransferService) Get(ctx context.Context, senderUserID, transferID string) (*models.Transfer, *models.Transaction, error) {
	transfer, err := s.repomanager.Transfers(s.db).GetByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrAlreadyProcessed
		}
		return nil, nil, common.ErrInternal
	}
	if transfer.SenderUserID != senderUserID {
		return nil, nil, common.ErrAlreadyProcessed
	}
	journalTx, err := s.repomanager.Transactions(s.db).GetByID(ctx, transfer.TransactionID)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return transfer, journalTx, nil
}

// ListForUser pages through a sender's transfers, newest first.
func (s *TransferService) ListForUser(ctx context.Context, senderUserID string, limit, offset int) ([]*models.Transfer, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repomanager.Transfers(s.db).ListBySender(ctx, senderUserID, limit, offset)
	if err != nil {
		return nil, common.ErrInternal
	}
	return list, nil
}

// loadOwnedPending fetches a transfer and its journal entry, collapsing
// "absent", "not owned by caller", and "already finalized" into the single
// ErrAlreadyProcessed so callers cannot probe other users' records.
func (s *TransferService) loadOwnedPending(ctx context.Context, senderUserID, transferID string) (*models.Transfer, *models.Transaction, error) {
	transfer, err := s.repomanager.Transfers(s.db).GetByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrAlreadyProcessed
		}
		return nil, nil, common.ErrInternal
	}
	if transfer.SenderUserID != senderUserID || transfer.Status != models.TransactionPending {
		return nil, nil, common.ErrAlreadyProcessed
	}

	journalTx, err := s.repomanager.Transactions(s.db).GetByID(ctx, transfer.TransactionID)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return transfer, journalTx, nil
}

// expire lazily transitions an overdue pending transfer. Losing the status
// race is fine, someone else already finalized it.
func (s *TransferService) expire(ctx context.Context, transfer *models.Transfer, journalTx *models.Transaction) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Transfers(tx).UpdateStatusIf(ctx, transfer.ID,
			models.TransactionPending, models.TransactionExpired)
		if err != nil || !won {
			return err
		}
		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionExpired)
	})
	if err != nil {
		s.logger.Warn(ctx, "transfer expiry sweep failed", "transfer_id", transfer.ID, "error", err)
	}
}

// fail marks a pending transfer as terminally failed and returns cause.
func (s *TransferService) fail(ctx context.Context, transfer *models.Transfer, journalTx *models.Transaction, cause error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Transfers(tx).UpdateStatusIf(ctx, transfer.ID,
			models.TransactionPending, models.TransactionFailed)
		if err != nil || !won {
			return err
		}
		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionFailed)
	})
	if err != nil {
		s.logger.Warn(ctx, "transfer failure record failed", "transfer_id", transfer.ID, "error", err)
	}
	return cause
}
