// Package services contains the money-movement engines and their supporting
// account, token, OTP, and receipt services. Engines return sentinel domain
// errors from internal/common for every expected business failure and never
// leak storage errors to callers.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/models"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
)

// tokenByteLen is the entropy per token value; hex-encoding doubles it to a
// 64-character string.
const tokenByteLen = 32

// TokenService issues, validates, refreshes, and revokes opaque bearer token
// pairs. Both values of a pair share one expiry; refreshing replaces the
// whole pair atomically, so a refresh token is single-use.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{db: db, repomanager: m, validity: cfg.TokenValidity}
}

// Issue mints a fresh access/refresh pair for userID.
func (s *TokenService) Issue(ctx context.Context, userID string) (*models.AuthToken, error) {
	return s.issue(ctx, userID, s.db)
}

func (s *TokenService) issue(ctx context.Context, userID string, db dbx.DBTX) (*models.AuthToken, error) {
	access, err := common.MakeRandHexString(tokenByteLen)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(tokenByteLen)
	if err != nil {
		return nil, common.ErrInternal
	}

	token := &models.AuthToken{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.validity),
	}

	repo := s.repomanager.AuthTokens(db)
	token, err = repo.Create(ctx, token)
	if err != nil {
		return nil, common.ErrInternal
	}
	return token, nil
}

// Validate resolves an access token to its owning user. Unknown tokens fail
// with ErrInvalidToken, stale ones with ErrTokenExpired.
func (s *TokenService) Validate(ctx context.Context, accessToken string) (*models.User, error) {
	repo := s.repomanager.AuthTokens(s.db)

	token, err := repo.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrInternal
	}
	if time.Now().After(token.ExpiresAt) {
		// lazy cleanup, the pair is dead either way
		_ = repo.DeleteByAccessToken(ctx, accessToken)
		return nil, common.ErrTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return user, nil
}

// Refresh rotates a token pair. The old pair is deleted and a new one
// created in a single transaction, so the presented refresh token can win at
// most once; a second use observes ErrInvalidToken.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.AuthToken, error) {
	repo := s.repomanager.AuthTokens(s.db)

	token, err := repo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrInternal
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, common.ErrTokenExpired
	}

	var pair *models.AuthToken
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.AuthTokens(tx)
		if err := repoTx.DeleteByRefreshToken(ctx, refreshToken); err != nil {
			// a concurrent refresh consumed it first
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		var issueErr error
		pair, issueErr = s.issue(ctx, token.UserID, tx)
		return issueErr
	})
	if err != nil {
		if _, ok := common.IsDomain(err); ok {
			return nil, err
		}
		return nil, common.ErrInternal
	}
	return pair, nil
}

// Revoke invalidates the pair identified by accessToken.
func (s *TokenService) Revoke(ctx context.Context, accessToken string) error {
	err := s.repomanager.AuthTokens(s.db).DeleteByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrInternal
	}
	return nil
}
