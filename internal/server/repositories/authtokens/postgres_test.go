package authtokens

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/server/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateAndGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO auth_tokens`)).
		WithArgs("u1", "access", "refresh", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("tok1", now))

	token, err := repo.Create(context.Background(), &models.AuthToken{
		UserID: "u1", AccessToken: "access", RefreshToken: "refresh",
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "tok1", token.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM auth_tokens WHERE access_token = $1`)).
		WithArgs("access").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "access_token", "refresh_token", "expires_at", "created_at",
		}).AddRow("tok1", "u1", "access", "refresh", now.Add(time.Hour), now))

	got, err := repo.GetByAccessToken(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM auth_tokens WHERE access_token = $1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM auth_tokens WHERE refresh_token = $1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteByAccessToken(context.Background(), "gone"), common.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByRefreshToken(context.Background(), "gone"), common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
