package users

import (
	"context"
	"time"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	SetOTP(ctx context.Context, userID string, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID string) error
	FinalizeRegistration(ctx context.Context, userID string, email string, pinHash []byte, nationalID string) error
	UpdatePinHash(ctx context.Context, userID string, pinHash []byte) error
	TouchLastLogin(ctx context.Context, userID string) error
}
