package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"time"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
)

const otpDigits = 6

// OTPService manages the one-time codes stored transiently on user records.
// Verify does not consume a code; callers pair it with Invalidate so the
// consume step stays explicit in the engine flow.
type OTPService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
}

func NewOTPService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *OTPService {
	return &OTPService{db: db, repomanager: m, validity: cfg.OTPValidity}
}

// Generate returns a 6-digit numeric code from the crypto random source.
func (s *OTPService) Generate() (string, error) {
	return common.MakeRandDigits(otpDigits)
}

// IssueFor generates a code, stores it with its expiry on the user record,
// and returns the code together with its expiry for external delivery.
func (s *OTPService) IssueFor(ctx context.Context, userID string) (string, time.Time, error) {
	code, err := s.Generate()
	if err != nil {
		return "", time.Time{}, common.ErrInternal
	}

	expiresAt := time.Now().Add(s.validity)
	if err := s.repomanager.Users(s.db).SetOTP(ctx, userID, code, expiresAt); err != nil {
		return "", time.Time{}, common.ErrInternal
	}
	return code, expiresAt, nil
}

// Verify reports whether code matches the stored one and is still within its
// validity window. The stored code survives verification.
func (s *OTPService) Verify(ctx context.Context, userID string, code string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, common.ErrInternal
	}

	if user.OTPCode == "" || user.OTPExpiresAt == nil {
		return false, nil
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(code)) == 1, nil
}

// Invalidate clears the stored code and expiry.
func (s *OTPService) Invalidate(ctx context.Context, userID string) error {
	if err := s.repomanager.Users(s.db).ClearOTP(ctx, userID); err != nil {
		return common.ErrInternal
	}
	return nil
}
