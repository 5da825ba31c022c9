package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
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

const (
	qrPrefix1 = "OM"
	qrPrefix2 = "PAY"
	qrFields  = 6

	// qrValidity is how long a QR payload stays usable past its embedded
	// timestamp.
	qrValidity = 5 * time.Minute

	paymentCodeDigits  = 8
	paymentCodeRetries = 3
)

var (
	paymentAmountMin = decimal.NewFromInt(50)
	paymentAmountMax = decimal.NewFromInt(500000)
)

// QRRequest is a resolved merchant QR payload.
type QRRequest struct {
	Merchant  *models.Merchant
	Amount    decimal.Decimal
	ExpiresAt time.Time
}

// PendingPayment is the result of a successful initiation; nothing has been
// debited yet.
type PendingPayment struct {
	Payment     *models.Payment
	Transaction *models.Transaction
	Merchant    *models.Merchant
	ExpiresAt   time.Time
}

// CompletedPayment is the result of a confirmed payment.
type CompletedPayment struct {
	Payment     *models.Payment
	Transaction *models.Transaction
	Balance     decimal.Decimal
	ReceiptURL  string
}

// PaymentService orchestrates merchant payments initiated by QR payload or
// single-use numeric code. Only the payer is debited; merchant settlement
// happens in a separate system.
type PaymentService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	receipts      *ReceiptService
	logger        logging.Logger
	qrSecret      []byte
	pendingWindow time.Duration
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, receipts *ReceiptService, logger logging.Logger, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:            db,
		repomanager:   m,
		receipts:      receipts,
		logger:        logger,
		qrSecret:      []byte(cfg.QRSecret),
		pendingWindow: cfg.PendingWindow,
	}
}

// ResolveQR parses and authenticates a merchant QR payload of the form
// OM_PAY_{merchantCode}_{amount}_{unixTimestamp}_{signature}. The signature
// is an HMAC-SHA256 over the first five fields; payloads that fail the check
// are rejected outright.
func (s *PaymentService) ResolveQR(ctx context.Context, payload string) (*QRRequest, error) {
	parts := strings.Split(payload, "_")
	if len(parts) != qrFields || parts[0] != qrPrefix1 || parts[1] != qrPrefix2 {
		return nil, common.ErrInvalidQRCode
	}

	merchantCode := parts[2]
	amount, err := decimal.NewFromString(parts[3])
	if err != nil || !amount.IsPositive() {
		return nil, common.ErrInvalidQRCode
	}
	ts, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, common.ErrInvalidQRCode
	}

	if !s.verifyQRSignature(strings.Join(parts[:5], "_"), parts[5]) {
		return nil, common.ErrInvalidQRCode
	}

	merchant, err := s.repomanager.Merchants(s.db).GetActiveByCode(ctx, merchantCode)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrMerchantNotFound
		}
		return nil, common.ErrInternal
	}

	expiresAt := time.Unix(ts, 0).Add(qrValidity)
	if time.Now().After(expiresAt) {
		return nil, common.ErrQRExpired
	}

	return &QRRequest{Merchant: merchant, Amount: amount, ExpiresAt: expiresAt}, nil
}

// SignQRPayload builds a signed QR payload for a merchant request. The
// merchant-facing boundary uses this when rendering QR codes.
func (s *PaymentService) SignQRPayload(merchantCode string, amount decimal.Decimal, issuedAt time.Time) string {
	base := strings.Join([]string{
		qrPrefix1, qrPrefix2, merchantCode, amount.String(),
		strconv.FormatInt(issuedAt.Unix(), 10),
	}, "_")
	mac := hmac.New(sha256.New, s.qrSecret)
	mac.Write([]byte(base))
	return base + "_" + hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) verifyQRSignature(base, signature string) bool {
	mac := hmac.New(sha256.New, s.qrSecret)
	mac.Write([]byte(base))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ResolveCode looks up an 8-digit numeric payment code among the active,
// unexpired ones.
func (s *PaymentService) ResolveCode(ctx context.Context, code string) (*models.PaymentCode, *models.Merchant, error) {
	if len(code) != paymentCodeDigits || !isDigits(code) {
		return nil, nil, common.ErrInvalidPaymentCode
	}

	pc, err := s.repomanager.PaymentCodes(s.db).GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidPaymentCode
		}
		return nil, nil, common.ErrInternal
	}

	merchant, err := s.repomanager.Merchants(s.db).GetByID(ctx, pc.MerchantID)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return pc, merchant, nil
}

// GeneratePaymentCode mints a single-use 8-digit code for a merchant payment
// request, valid for the pending window.
func (s *PaymentService) GeneratePaymentCode(ctx context.Context, merchantID string, amount decimal.Decimal) (*models.PaymentCode, error) {
	if err := checkPaymentAmount(amount); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Merchants(s.db).GetByID(ctx, merchantID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrMerchantNotFound
		}
		return nil, common.ErrInternal
	}

	repo := s.repomanager.PaymentCodes(s.db)
	for range paymentCodeRetries {
		digits, err := common.MakeRandDigits(paymentCodeDigits)
		if err != nil {
			return nil, common.ErrInternal
		}

		pc, err := repo.Create(ctx, &models.PaymentCode{
			Code:       digits,
			MerchantID: merchantID,
			Amount:     amount,
			ExpiresAt:  time.Now().Add(s.pendingWindow),
		})
		if err == nil {
			return pc, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, common.ErrInternal
		}
	}
	return nil, common.ErrInternal
}

// Initiate creates a pending payment. Amounts are bounded to [50, 500000]
// and carry no fee; the wallet must cover the amount but is not debited yet.
// A code artifact must belong to the merchant, match the amount, and still
// be consumable, otherwise the initiation is rejected before anything is
// written.
func (s *PaymentService) Initiate(ctx context.Context, userID, merchantID string, amount decimal.Decimal, mode models.PaymentMode, artifactID string) (*PendingPayment, error) {
	if err := checkPaymentAmount(amount); err != nil {
		return nil, err
	}

	merchant, err := s.repomanager.Merchants(s.db).GetByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrMerchantNotFound
		}
		return nil, common.ErrInternal
	}

	if artifactID != "" {
		pc, err := s.repomanager.PaymentCodes(s.db).GetByID(ctx, artifactID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrInvalidPaymentCode
			}
			return nil, common.ErrInternal
		}
		if pc.Used || time.Now().After(pc.ExpiresAt) ||
			pc.MerchantID != merchant.ID || !pc.Amount.Equal(amount) {
			return nil, common.ErrInvalidPaymentCode
		}
	}

	wallet, err := s.repomanager.Wallets(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			return nil, common.ErrWalletNotFound
		}
		return nil, common.ErrInternal
	}
	if wallet.Balance.LessThan(amount) {
		return nil, common.ErrInsufficientFunds
	}

	expiresAt := time.Now().Add(s.pendingWindow)

	var journalTx *models.Transaction
	var payment *models.Payment
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		journalTx, err = recordTransaction(ctx, s.repomanager.Transactions(tx), &models.Transaction{
			Type:     models.TransactionTypePayment,
			Amount:   amount,
			Currency: wallet.Currency,
			Fee:      decimal.Zero,
			Status:   models.TransactionPending,
			WalletID: wallet.ID,
		})
		if err != nil {
			return err
		}

		payment, err = s.repomanager.Payments(tx).Create(ctx, &models.Payment{
			TransactionID: journalTx.ID,
			UserID:        userID,
			MerchantID:    merchant.ID,
			Mode:          mode,
			ArtifactID:    artifactID,
			Status:        models.TransactionPending,
			ExpiresAt:     expiresAt,
		})
		return err
	})
	if err != nil {
		if _, ok := common.IsDomain(err); ok {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "payment initiated",
		"payment_id", payment.ID, "reference", journalTx.Reference,
		"merchant", merchant.Code, "amount", amount.String())

	return &PendingPayment{
		Payment:     payment,
		Transaction: journalTx,
		Merchant:    merchant,
		ExpiresAt:   expiresAt,
	}, nil
}

// Confirm applies a pending payment: PIN check, then one database
// transaction that wins the pending->confirmed transition, debits the payer,
// consumes the code artifact exactly once, and finalizes the journal entry.
func (s *PaymentService) Confirm(ctx context.Context, userID, paymentID, pin string) (*CompletedPayment, error) {
	payment, journalTx, err := s.loadOwnedPending(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if time.Now().After(payment.ExpiresAt) {
		s.expire(ctx, payment, journalTx)
		return nil, common.ErrPendingExpired
	}

	payer, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !cryptox.CheckPin(payer.PinHash, pin) {
		return nil, common.ErrIncorrectPin
	}

	var balance decimal.Decimal
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Payments(tx).UpdateStatusIf(ctx, payment.ID,
			models.TransactionPending, models.TransactionConfirmed)
		if err != nil {
			return err
		}
		if !won {
			return common.ErrAlreadyProcessed
		}

		balance, err = s.repomanager.Wallets(tx).Debit(ctx, journalTx.WalletID, journalTx.Amount)
		if err != nil {
			return err
		}

		if payment.ArtifactID != "" {
			used, err := s.repomanager.PaymentCodes(tx).MarkUsed(ctx, payment.ArtifactID)
			if err != nil {
				return err
			}
			if !used {
				return common.ErrInvalidPaymentCode
			}
		}

		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionConfirmed)
	})
	if err != nil {
		if errors.Is(err, common.ErrInsufficientFunds) {
			return nil, s.fail(ctx, payment, journalTx, common.ErrInsufficientFunds)
		}
		if _, ok := common.IsDomain(err); ok {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	payment.Status = models.TransactionConfirmed
	journalTx.Status = models.TransactionConfirmed

	receiptURL := ""
	if s.receipts != nil {
		receiptURL, err = s.receipts.URLFor(ctx, journalTx.Reference)
		if err != nil {
			s.logger.Warn(ctx, "receipt presign failed", "reference", journalTx.Reference, "error", err)
			receiptURL = ""
		}
	}

	s.logger.Info(ctx, "payment confirmed",
		"payment_id", payment.ID, "reference", journalTx.Reference)

	return &CompletedPayment{
		Payment:     payment,
		Transaction: journalTx,
		Balance:     balance,
		ReceiptURL:  receiptURL,
	}, nil
}

// Cancel voids a pending payment without a PIN check.
func (s *PaymentService) Cancel(ctx context.Context, userID, paymentID string) error {
	payment, journalTx, err := s.loadOwnedPending(ctx, userID, paymentID)
	if err != nil {
		return err
	}

	if time.Now().After(payment.ExpiresAt) {
		s.expire(ctx, payment, journalTx)
		return common.ErrPendingExpired
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Payments(tx).UpdateStatusIf(ctx, payment.ID,
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

	s.logger.Info(ctx, "payment cancelled", "payment_id", payment.ID, "reference", journalTx.Reference)
	return nil
}

// ListForUser pages through a payer's payments, newest first.
func (s *PaymentService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repomanager.Payments(s.db).ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, common.ErrInternal
	}
	return list, nil
}

func (s *PaymentService) loadOwnedPending(ctx context.Context, userID, paymentID string) (*models.Payment, *models.Transaction, error) {
	payment, err := s.repomanager.Payments(s.db).GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrAlreadyProcessed
		}
		return nil, nil, common.ErrInternal
	}
	if payment.UserID != userID || payment.Status != models.TransactionPending {
		return nil, nil, common.ErrAlreadyProcessed
	}

	journalTx, err := s.repomanager.Transactions(s.db).GetByID(ctx, payment.TransactionID)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return payment, journalTx, nil
}

func (s *PaymentService) expire(ctx context.Context, payment *models.Payment, journalTx *models.Transaction) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Payments(tx).UpdateStatusIf(ctx, payment.ID,
			models.TransactionPending, models.TransactionExpired)
		if err != nil || !won {
			return err
		}
		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionExpired)
	})
	if err != nil {
		s.logger.Warn(ctx, "payment expiry sweep failed", "payment_id", payment.ID, "error", err)
	}
}

func (s *PaymentService) fail(ctx context.Context, payment *models.Payment, journalTx *models.Transaction, cause error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.Payments(tx).UpdateStatusIf(ctx, payment.ID,
			models.TransactionPending, models.TransactionFailed)
		if err != nil || !won {
			return err
		}
		return s.repomanager.Transactions(tx).Finalize(ctx, journalTx.Reference, models.TransactionFailed)
	})
	if err != nil {
		s.logger.Warn(ctx, "payment failure record failed", "payment_id", payment.ID, "error", err)
	}
	return cause
}

func checkPaymentAmount(amount decimal.Decimal) error {
	if amount.LessThan(paymentAmountMin) || amount.GreaterThan(paymentAmountMax) {
		return common.ErrAmountOutOfRange
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
