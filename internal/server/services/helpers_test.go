package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terangapay/terangapay/internal/cryptox"
	"github.com/terangapay/terangapay/internal/logging"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// seedVerifiedUser creates a verified user with a hashed PIN and a wallet
// holding the given balance.
func seedVerifiedUser(t *testing.T, rm *fakeRepoManager, phone, pin string, balance int64) (*models.User, *models.Wallet) {
	t.Helper()

	pinHash, err := cryptox.HashPin(pin)
	if err != nil {
		t.Fatalf("HashPin error: %v", err)
	}

	user := rm.users.add(&models.User{
		Phone:     phone,
		FirstName: "Awa",
		LastName:  "Diop",
		PinHash:   pinHash,
		KYCStatus: models.KYCVerified,
	})
	wallet := rm.wallets.add(&models.Wallet{
		UserID:   user.ID,
		Balance:  decimal.NewFromInt(balance),
		Currency: "XOF",
	})
	return user, wallet
}

func seedMerchant(t *testing.T, rm *fakeRepoManager, code string) *models.Merchant {
	t.Helper()
	return rm.merchants.add(&models.Merchant{
		Code:   code,
		Name:   "Boutique Sandaga",
		Phone:  "+221770000099",
		Active: true,
	})
}

func pendingWindowConfig(window time.Duration) *config.Config {
	cfg := testConfig()
	cfg.PendingWindow = window
	return cfg
}
