package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/migrations"
	"github.com/terangapay/terangapay/internal/server/repositories/authtokens"
	"github.com/terangapay/terangapay/internal/server/repositories/merchants"
	"github.com/terangapay/terangapay/internal/server/repositories/paymentcodes"
	"github.com/terangapay/terangapay/internal/server/repositories/payments"
	"github.com/terangapay/terangapay/internal/server/repositories/transactions"
	"github.com/terangapay/terangapay/internal/server/repositories/transfers"
	"github.com/terangapay/terangapay/internal/server/repositories/users"
	"github.com/terangapay/terangapay/internal/server/repositories/wallets"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Wallets(db dbx.DBTX) wallets.Repository {
	return wallets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Transfers(db dbx.DBTX) transfers.Repository {
	return transfers.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Payments(db dbx.DBTX) payments.Repository {
	return payments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PaymentCodes(db dbx.DBTX) paymentcodes.Repository {
	return paymentcodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Merchants(db dbx.DBTX) merchants.Repository {
	return merchants.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuthTokens(db dbx.DBTX) authtokens.Repository {
	return authtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
