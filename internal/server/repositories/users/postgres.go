package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, phone, first_name, last_name, COALESCE(email, ''), pin_hash,
	COALESCE(national_id, ''), kyc_status, biometric_enabled,
	COALESCE(otp_code, ''), otp_expires_at, created_at, last_login_at`

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Phone, &u.FirstName, &u.LastName, &u.Email, &u.PinHash,
		&u.NationalID, &u.KYCStatus, &u.BiometricEnabled,
		&u.OTPCode, &u.OTPExpiresAt, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (phone, first_name, last_name, kyc_status)
	 VALUES ($1, $2, $3, $4)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Phone, user.FirstName, user.LastName, user.KYCStatus).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, phone))
}

func (r *PostgresRepository) SetOTP(ctx context.Context, userID string, code string, expiresAt time.Time) error {
	query := `UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3`
	return r.execExpectingRow(ctx, query, code, expiresAt, userID)
}

func (r *PostgresRepository) ClearOTP(ctx context.Context, userID string) error {
	query := `UPDATE users SET otp_code = NULL, otp_expires_at = NULL WHERE id = $1`
	return r.execExpectingRow(ctx, query, userID)
}

func (r *PostgresRepository) FinalizeRegistration(ctx context.Context, userID string, email string, pinHash []byte, nationalID string) error {
	query := `UPDATE users
	 SET email = NULLIF($1, ''), pin_hash = $2, national_id = NULLIF($3, ''), kyc_status = $4
	 WHERE id = $5`
	return r.execExpectingRow(ctx, query, email, pinHash, nationalID, models.KYCVerified, userID)
}

func (r *PostgresRepository) UpdatePinHash(ctx context.Context, userID string, pinHash []byte) error {
	query := `UPDATE users SET pin_hash = $1 WHERE id = $2`
	return r.execExpectingRow(ctx, query, pinHash, userID)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login_at = now() WHERE id = $1`
	return r.execExpectingRow(ctx, query, userID)
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
