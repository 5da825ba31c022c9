package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/terangapay/terangapay/internal/common"
	"github.com/terangapay/terangapay/internal/dbx"
	"github.com/terangapay/terangapay/internal/server/models"
	authtokensrepo "github.com/terangapay/terangapay/internal/server/repositories/authtokens"
	merchantsrepo "github.com/terangapay/terangapay/internal/server/repositories/merchants"
	paymentcodesrepo "github.com/terangapay/terangapay/internal/server/repositories/paymentcodes"
	paymentsrepo "github.com/terangapay/terangapay/internal/server/repositories/payments"
	transactionsrepo "github.com/terangapay/terangapay/internal/server/repositories/transactions"
	transfersrepo "github.com/terangapay/terangapay/internal/server/repositories/transfers"
	usersrepo "github.com/terangapay/terangapay/internal/server/repositories/users"
	walletsrepo "github.com/terangapay/terangapay/internal/server/repositories/wallets"
)

// newServiceDB returns a sqlmock-backed *sql.DB that tolerates any number of
// transactions. The fakes below hold the actual state; the DB handle only
// has to survive dbx.WithTx calls.
func newServiceDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for range 64 {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- in-memory repositories ---

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byPhone map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{}, byPhone: map[string]*models.User{}}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.byPhone[u.Phone] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return f.add(u), nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byPhone[phone]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) SetOTP(ctx context.Context, userID string, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.OTPCode = code
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (f *fakeUsers) ClearOTP(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.OTPCode = ""
	u.OTPExpiresAt = nil
	return nil
}

func (f *fakeUsers) FinalizeRegistration(ctx context.Context, userID string, email string, pinHash []byte, nationalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.Email = email
	u.PinHash = pinHash
	u.NationalID = nationalID
	u.KYCStatus = models.KYCVerified
	return nil
}

func (f *fakeUsers) UpdatePinHash(ctx context.Context, userID string, pinHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.PinHash = pinHash
	return nil
}

func (f *fakeUsers) TouchLastLogin(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

type fakeWallets struct {
	mu   sync.Mutex
	byID map[string]*models.Wallet
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{byID: map[string]*models.Wallet{}}
}

func (f *fakeWallets) add(w *models.Wallet) *models.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.UpdatedAt = time.Now()
	f.byID[w.ID] = w
	return w
}

func (f *fakeWallets) Create(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	return f.add(w), nil
}

func (f *fakeWallets) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.byID[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, common.ErrWalletNotFound
}

func (f *fakeWallets) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.byID {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, common.ErrWalletNotFound
}

func (f *fakeWallets) Debit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[walletID]
	if !ok {
		return decimal.Zero, common.ErrWalletNotFound
	}
	if w.Balance.LessThan(amount) {
		return decimal.Zero, common.ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return w.Balance, nil
}

func (f *fakeWallets) Credit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.byID[walletID]
	if !ok {
		return decimal.Zero, common.ErrWalletNotFound
	}
	w.Balance = w.Balance.Add(amount)
	return w.Balance, nil
}

type fakeTransactions struct {
	mu    sync.Mutex
	byRef map[string]*models.Transaction
}

func newFakeTransactions() *fakeTransactions {
	return &fakeTransactions{byRef: map[string]*models.Transaction{}}
}

func (f *fakeTransactions) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byRef[tx.Reference]; ok {
		return nil, common.ErrConflict
	}
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	f.byRef[tx.Reference] = tx
	return tx, nil
}

func (f *fakeTransactions) Finalize(ctx context.Context, reference string, status models.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byRef[reference]
	if !ok || tx.Status != models.TransactionPending || !status.Terminal() {
		return common.ErrInvalidStateTransition
	}
	tx.Status = status
	return nil
}

func (f *fakeTransactions) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx, ok := f.byRef[reference]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.byRef {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeTransactions) ListByWallet(ctx context.Context, walletID string, filter transactionsrepo.Filter, page transactionsrepo.Page) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*models.Transaction
	for _, tx := range f.byRef {
		if tx.WalletID == walletID {
			cp := *tx
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakeTransfers struct {
	mu   sync.Mutex
	byID map[string]*models.Transfer
}

func newFakeTransfers() *fakeTransfers {
	return &fakeTransfers{byID: map[string]*models.Transfer{}}
}

func (f *fakeTransfers) Create(ctx context.Context, tr *models.Transfer) (*models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr.ID = uuid.NewString()
	tr.CreatedAt = time.Now()
	f.byID[tr.ID] = tr
	return tr, nil
}

func (f *fakeTransfers) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tr, ok := f.byID[id]; ok {
		cp := *tr
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeTransfers) UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr, ok := f.byID[id]
	if !ok || tr.Status != from {
		return false, nil
	}
	tr.Status = to
	return true, nil
}

func (f *fakeTransfers) ListBySender(ctx context.Context, senderUserID string, limit, offset int) ([]*models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*models.Transfer
	for _, tr := range f.byID {
		if tr.SenderUserID == senderUserID {
			cp := *tr
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakePayments struct {
	mu   sync.Mutex
	byID map[string]*models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{byID: map[string]*models.Payment{}}
}

func (f *fakePayments) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePayments) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakePayments) UpdateStatusIf(ctx context.Context, id string, from, to models.TransactionStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (f *fakePayments) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*models.Payment
	for _, p := range f.byID {
		if p.UserID == userID {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakePaymentCodes struct {
	mu   sync.Mutex
	byID map[string]*models.PaymentCode
}

func newFakePaymentCodes() *fakePaymentCodes {
	return &fakePaymentCodes{byID: map[string]*models.PaymentCode{}}
}

func (f *fakePaymentCodes) Create(ctx context.Context, pc *models.PaymentCode) (*models.PaymentCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.Code == pc.Code {
			return nil, common.ErrConflict
		}
	}
	pc.ID = uuid.NewString()
	pc.CreatedAt = time.Now()
	f.byID[pc.ID] = pc
	return pc, nil
}

func (f *fakePaymentCodes) GetActiveByCode(ctx context.Context, code string) (*models.PaymentCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pc := range f.byID {
		if pc.Code == code && !pc.Used && time.Now().Before(pc.ExpiresAt) {
			cp := *pc
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakePaymentCodes) GetByID(ctx context.Context, id string) (*models.PaymentCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pc, ok := f.byID[id]; ok {
		cp := *pc
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakePaymentCodes) MarkUsed(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pc, ok := f.byID[id]
	if !ok || pc.Used {
		return false, nil
	}
	pc.Used = true
	return true, nil
}

type fakeMerchants struct {
	mu   sync.Mutex
	byID map[string]*models.Merchant
}

func newFakeMerchants() *fakeMerchants {
	return &fakeMerchants{byID: map[string]*models.Merchant{}}
}

func (f *fakeMerchants) add(m *models.Merchant) *models.Merchant {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now()
	f.byID[m.ID] = m
	return m
}

func (f *fakeMerchants) Create(ctx context.Context, m *models.Merchant) (*models.Merchant, error) {
	return f.add(m), nil
}

func (f *fakeMerchants) GetByID(ctx context.Context, id string) (*models.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeMerchants) GetActiveByCode(ctx context.Context, code string) (*models.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.Code == code && m.Active {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeAuthTokens struct {
	mu   sync.Mutex
	rows map[string]*models.AuthToken // keyed by access token
}

func newFakeAuthTokens() *fakeAuthTokens {
	return &fakeAuthTokens{rows: map[string]*models.AuthToken{}}
}

func (f *fakeAuthTokens) Create(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	f.rows[token.AccessToken] = token
	return token, nil
}

func (f *fakeAuthTokens) GetByAccessToken(ctx context.Context, accessToken string) (*models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[accessToken]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeAuthTokens) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.RefreshToken == refreshToken {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAuthTokens) DeleteByAccessToken(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[accessToken]; !ok {
		return common.ErrNotFound
	}
	delete(f.rows, accessToken)
	return nil
}

func (f *fakeAuthTokens) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for access, t := range f.rows {
		if t.RefreshToken == refreshToken {
			delete(f.rows, access)
			return nil
		}
	}
	return common.ErrNotFound
}

// --- repomanager over the fakes ---

type fakeRepoManager struct {
	users        *fakeUsers
	wallets      *fakeWallets
	transactions *fakeTransactions
	transfers    *fakeTransfers
	payments     *fakePayments
	paymentCodes *fakePaymentCodes
	merchants    *fakeMerchants
	authTokens   *fakeAuthTokens
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:        newFakeUsers(),
		wallets:      newFakeWallets(),
		transactions: newFakeTransactions(),
		transfers:    newFakeTransfers(),
		payments:     newFakePayments(),
		paymentCodes: newFakePaymentCodes(),
		merchants:    newFakeMerchants(),
		authTokens:   newFakeAuthTokens(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) Wallets(dbx.DBTX) walletsrepo.Repository             { return m.wallets }
func (m *fakeRepoManager) Transactions(dbx.DBTX) transactionsrepo.Repository   { return m.transactions }
func (m *fakeRepoManager) Transfers(dbx.DBTX) transfersrepo.Repository         { return m.transfers }
func (m *fakeRepoManager) Payments(dbx.DBTX) paymentsrepo.Repository           { return m.payments }
func (m *fakeRepoManager) PaymentCodes(dbx.DBTX) paymentcodesrepo.Repository   { return m.paymentCodes }
func (m *fakeRepoManager) Merchants(dbx.DBTX) merchantsrepo.Repository         { return m.merchants }
func (m *fakeRepoManager) AuthTokens(dbx.DBTX) authtokensrepo.Repository       { return m.authTokens }

// --- collaborators ---

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fails bool
}

func (n *fakeNotifier) Send(ctx context.Context, phone string, message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails {
		return false
	}
	n.sent = append(n.sent, phone)
	return true
}

type fakeDirectory struct {
	accounts map[string]*LegacyAccount
}

func (d *fakeDirectory) LookupActiveAccount(ctx context.Context, phone string) (*LegacyAccount, error) {
	if d.accounts == nil {
		return nil, nil
	}
	return d.accounts[phone], nil
}
