package merchants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, merchant *models.Merchant) (*models.Merchant, error) {
	query := `INSERT INTO merchants (code, name, phone, active)
	 VALUES ($1, $2, $3, $4)
	 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		merchant.Code, merchant.Name, merchant.Phone, merchant.Active).
		Scan(&merchant.ID, &merchant.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return merchant, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Merchant, error) {
	query := `SELECT id, code, name, phone, active, created_at FROM merchants WHERE id = $1`
	return r.scanMerchant(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetActiveByCode(ctx context.Context, code string) (*models.Merchant, error) {
	query := `SELECT id, code, name, phone, active, created_at
	 FROM merchants WHERE code = $1 AND active = TRUE`
	return r.scanMerchant(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresRepository) scanMerchant(row *sql.Row) (*models.Merchant, error) {
	m := &models.Merchant{}
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Phone, &m.Active, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}
