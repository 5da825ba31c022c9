// Package repomanager hands out repositories bound to a DBTX, so a service
// can run several repositories against one *sql.Tx inside dbx.WithTx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/repositories/authtokens"
	"github.com/terangapay/terangapay/internal/server/repositories/merchants"
	"github.com/terangapay/terangapay/internal/server/repositories/paymentcodes"
	"github.com/terangapay/terangapay/internal/server/repositories/payments"
	"github.com/terangapay/terangapay/internal/server/repositories/transactions"
	"github.com/terangapay/terangapay/internal/server/repositories/transfers"
	"github.com/terangapay/terangapay/internal/server/repositories/users"
	"github.com/terangapay/terangapay/internal/server/repositories/wallets"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Wallets(db dbx.DBTX) wallets.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Transfers(db dbx.DBTX) transfers.Repository
	Payments(db dbx.DBTX) payments.Repository
	PaymentCodes(db dbx.DBTX) paymentcodes.Repository
	Merchants(db dbx.DBTX) merchants.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
}
