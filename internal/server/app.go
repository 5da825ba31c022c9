// Package server wires the TerangaPay engines together: storage, migrations,
// and the service layer. The transport boundary (HTTP, gRPC, USSD gateway)
// mounts the exported services; it is deliberately not part of this module.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/terangapay/terangapay/internal/logging"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/repositories/repomanager"
	"github.com/terangapay/terangapay/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Users     *services.UserService
	Tokens    *services.TokenService
	OTP       *services.OTPService
	Transfers *services.TransferService
	Payments  *services.PaymentService
	Journal   *services.JournalService
	Receipts  *services.ReceiptService
}

// NewApp opens the database, runs migrations, and builds the service graph.
// The directory collaborator is injected because only the deployment knows
// how to reach the legacy account system; pass a nil notifier to fall back
// to the logging stub.
func NewApp(ctx context.Context, cfg *config.Config, notifier services.Notifier, directory services.LegacyDirectory) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	if notifier == nil {
		notifier = services.NewLogNotifier(logger)
	}

	receipts := services.NewReceiptService(cfg)
	tokens := services.NewTokenService(db, rm, cfg)
	otp := services.NewOTPService(db, rm, cfg)
	users := services.NewUserService(db, rm, tokens, otp, notifier, directory, logger)
	transfers := services.NewTransferService(db, rm, receipts, logger, cfg)
	payments := services.NewPaymentService(db, rm, receipts, logger, cfg)
	journal := services.NewJournalService(db, rm)

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		Users:     users,
		Tokens:    tokens,
		OTP:       otp,
		Transfers: transfers,
		Payments:  payments,
		Journal:   journal,
		Receipts:  receipts,
	}, nil
}

// Run blocks until the context is cancelled or a termination signal arrives,
// then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "engines ready")
	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")
	return app.db.Close()
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
