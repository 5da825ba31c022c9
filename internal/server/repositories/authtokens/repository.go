package authtokens

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error)
	GetByAccessToken(ctx context.Context, accessToken string) (*models.AuthToken, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthToken, error)
	DeleteByAccessToken(ctx context.Context, accessToken string) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
}
