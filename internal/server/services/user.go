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
	"github.com/terangapay/terangapay/internal/server/models"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
)

const walletCurrency = "XOF"

// Session is what a successful login or registration finalization yields.
type Session struct {
	User  *models.User
	Token *models.AuthToken
}

// RegistrationResult reports the outcome of a registration initiation.
// OTPSent reflects the notifier's best-effort delivery; a false value does
// not mean the OTP was not issued.
type RegistrationResult struct {
	UserID              string
	Phone               string
	LegacyAccountLinked bool
	OTPSent             bool
	OTPExpiresAt        time.Time
}

// UserService is the account/auth engine: registration, OTP-gated
// activation, PIN-based login, and PIN change. It produces and consumes the
// token and OTP services.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	otp         *OTPService
	notifier    Notifier
	directory   LegacyDirectory
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, otp *OTPService, notifier Notifier, directory LegacyDirectory, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		otp:         otp,
		notifier:    notifier,
		directory:   directory,
		logger:      logger,
	}
}

// InitiateRegistration creates a pending-verification user plus an empty
// wallet for a phone that has an eligible legacy account, then issues an OTP
// for external delivery. OTP delivery failure does not undo issuance.
func (s *UserService) InitiateRegistration(ctx context.Context, phone, firstName, lastName string) (*RegistrationResult, error) {
	usersRepo := s.repomanager.Users(s.db)

	if _, err := usersRepo.GetByPhone(ctx, phone); err == nil {
		return nil, common.ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	legacy, err := s.directory.LookupActiveAccount(ctx, phone)
	if err != nil {
		return nil, common.ErrInternal
	}
	if legacy == nil {
		return nil, common.ErrNoEligibleAccount
	}

	if firstName == "" {
		firstName = legacy.FirstName
	}
	if lastName == "" {
		lastName = legacy.LastName
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err = s.repomanager.Users(tx).Create(ctx, &models.User{
			Phone:     phone,
			FirstName: firstName,
			LastName:  lastName,
			KYCStatus: models.KYCPendingVerification,
		})
		if err != nil {
			return err
		}
		_, err = s.repomanager.Wallets(tx).Create(ctx, &models.Wallet{
			UserID:   user.ID,
			Balance:  decimal.Zero,
			Currency: walletCurrency,
		})
		return err
	})
	if err != nil {
		return nil, common.ErrInternal
	}

	code, otpExpiresAt, err := s.otp.IssueFor(ctx, user.ID)
	if err != nil {
		return nil, common.ErrInternal
	}

	sent := s.notifier.Send(ctx, phone, "Your TerangaPay verification code is "+code)
	if !sent {
		s.logger.Warn(ctx, "otp delivery failed", "user_id", user.ID)
	}

	s.logger.Info(ctx, "registration initiated", "user_id", user.ID)

	return &RegistrationResult{
		UserID:              user.ID,
		Phone:               phone,
		LegacyAccountLinked: true,
		OTPSent:             sent,
		OTPExpiresAt:        otpExpiresAt,
	}, nil
}

// FinalizeRegistration verifies the OTP, completes the profile, marks the
// user verified, consumes the OTP, and opens a session.
func (s *UserService) FinalizeRegistration(ctx context.Context, phone, otp, email, pin, nationalID string) (*Session, error) {
	usersRepo := s.repomanager.Users(s.db)

	user, err := usersRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidOTP
		}
		return nil, common.ErrInternal
	}
	if user.KYCStatus != models.KYCPendingVerification {
		return nil, common.ErrAlreadyRegistered
	}

	ok, err := s.otp.Verify(ctx, user.ID, otp)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !ok {
		return nil, common.ErrInvalidOTP
	}

	pinHash, err := cryptox.HashPin(pin)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := usersRepo.FinalizeRegistration(ctx, user.ID, email, pinHash, nationalID); err != nil {
		return nil, common.ErrInternal
	}
	if err := s.otp.Invalidate(ctx, user.ID); err != nil {
		return nil, common.ErrInternal
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	user, err = usersRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "registration finalized", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// Login checks phone+PIN and opens a session. User absence and PIN mismatch
// collapse into one error so callers cannot enumerate accounts.
func (s *UserService) Login(ctx context.Context, phone, pin string) (*Session, error) {
	usersRepo := s.repomanager.Users(s.db)

	user, err := usersRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	if len(user.PinHash) == 0 || !cryptox.CheckPin(user.PinHash, pin) {
		return nil, common.ErrInvalidCredentials
	}
	if user.KYCStatus != models.KYCVerified {
		return nil, common.ErrAccountNotVerified
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := usersRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "last-login update failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info(ctx, "login", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// ChangePin swaps the PIN after verifying the old one. The new PIN must
// differ from the old.
func (s *UserService) ChangePin(ctx context.Context, userID, oldPin, newPin string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return common.ErrInternal
	}
	if !cryptox.CheckPin(user.PinHash, oldPin) {
		return common.ErrIncorrectPin
	}
	if oldPin == newPin {
		return common.ErrSamePin
	}

	pinHash, err := cryptox.HashPin(newPin)
	if err != nil {
		return common.ErrInternal
	}
	if err := s.repomanager.Users(s.db).UpdatePinHash(ctx, userID, pinHash); err != nil {
		return common.ErrInternal
	}

	s.logger.Info(ctx, "pin changed", "user_id", userID)
	return nil
}

// Authenticate resolves an access token to its user.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	return s.tokens.Validate(ctx, accessToken)
}

// RefreshSession rotates a token pair.
func (s *UserService) RefreshSession(ctx context.Context, refreshToken string) (*models.AuthToken, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes the pair identified by accessToken.
func (s *UserService) Logout(ctx context.Context, accessToken string) error {
	return s.tokens.Revoke(ctx, accessToken)
}
