package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bank-ledger/internal/config"
	"bank-ledger/internal/metrics"
	"bank-ledger/internal/models"
	"bank-ledger/internal/notify"
	"bank-ledger/internal/store"
	"bank-ledger/internal/utils"
)

const minPasswordLength = 6

var minInitialBalance = decimal.NewFromInt(1500)

// dummyHash keeps authentication timing flat when the account number is
// unknown, so the negative result does not leak which half failed.
var dummyHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)
	return string(h)
}()

// Service is the ledger engine. All balance-mutating operations on one
// account are serialized through the lock table; transfers hold both
// accounts' locks for their whole duration.
type Service struct {
	store   store.LedgerStore
	log     *logrus.Logger
	config  *config.Config
	metrics *metrics.Collector
	notify  *notify.Sender
	locks   *accountLocks
}

// NewService initializes a new ledger service. The notify sender may be
// nil when SMTP is not configured.
func NewService(st store.LedgerStore, log *logrus.Logger, cfg *config.Config, collector *metrics.Collector, sender *notify.Sender) *Service {
	return &Service{
		store:   st,
		log:     log,
		config:  cfg,
		metrics: collector,
		notify:  sender,
		locks:   newAccountLocks(),
	}
}

func (s *Service) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, time.Since(start), err)
	}
}

// CreateAccountParams carries the account-opening input.
type CreateAccountParams struct {
	Kind           models.AccountKind
	CustomerName   string
	Address        string
	ContactNumber  string
	GovtID         string
	Age            int
	InitialBalance decimal.Decimal
	ProfilePhoto   []byte
	Password       string
}

// CreateAccount opens a new account: validates the opening rules,
// allocates a collision-free account number, hashes the password and
// records the INITIAL DEPOSIT log entry.
func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (account *models.Account, err error) {
	start := time.Now()
	defer func() { s.observe("create_account", start, err) }()

	if params.InitialBalance.Cmp(minInitialBalance) < 0 {
		return nil, models.ErrInvalidInitialBalance
	}
	if len(params.Password) < minPasswordLength {
		return nil, models.ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account = &models.Account{
		CustomerName:  params.CustomerName,
		Address:       params.Address,
		ContactNumber: params.ContactNumber,
		GovtID:        params.GovtID,
		Age:           params.Age,
		Kind:          params.Kind,
		Balance:       params.InitialBalance,
		ProfilePhoto:  params.ProfilePhoto,
		PasswordHash:  string(hashed),
	}

	if err = s.allocateAndCreate(ctx, account); err != nil {
		return nil, err
	}

	if err = s.store.RecordTransaction(ctx, account.AccountNumber, models.TxInitialDeposit, params.InitialBalance); err != nil {
		return nil, err
	}

	s.log.Infof("Created new %s account: %s", account.Kind, account.AccountNumber)
	return account, nil
}

// allocateAndCreate retries fresh candidate numbers until the store
// accepts one. Collisions are rare enough that the loop terminates almost
// surely; the context bounds it in the degenerate case.
func (s *Service) allocateAndCreate(ctx context.Context, account *models.Account) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		number, err := utils.GenerateAccountNumber()
		if err != nil {
			return err
		}

		taken, err := s.store.AccountExists(ctx, number)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		account.AccountNumber = number
		err = s.store.CreateAccount(ctx, account)
		if errors.Is(err, models.ErrDuplicateAccountNumber) {
			// Lost the race for this number; try another.
			continue
		}
		return err
	}
}

// Authenticate verifies the account number and password pair. Unknown
// numbers and wrong passwords both come back as ErrNotFound. On success a
// signed session token accompanies the account.
func (s *Service) Authenticate(ctx context.Context, accountNumber, password string) (*models.Account, string, error) {
	account, err := s.store.FindAccount(ctx, accountNumber)
	if errors.Is(err, models.ErrNotFound) {
		// Burn a comparison anyway so the miss is not observable by timing.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, "", models.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", models.ErrNotFound
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   account.AccountNumber,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Account authenticated: %s", account.AccountNumber)
	return account, tokenString, nil
}

// Deposit credits the account and appends a DEPOSIT log entry.
func (s *Service) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	start := time.Now()
	defer func() { s.observe("deposit", start, err) }()

	if amount.Sign() <= 0 {
		return decimal.Zero, models.ErrInvalidAmount
	}

	unlock := s.locks.lock(accountNumber)
	defer unlock()

	account, err := s.store.FindAccount(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}

	previous := account.Balance
	if err = account.Deposit(amount); err != nil {
		return decimal.Zero, err
	}
	if err = s.persistMutation(ctx, account, previous, models.TxDeposit, amount); err != nil {
		return decimal.Zero, err
	}

	s.log.Infof("Deposit of %s to %s, new balance %s", amount, accountNumber, account.Balance)
	return account.Balance, nil
}

// Withdraw debits the account, enforcing the kind's floor, and appends a
// WITHDRAWAL log entry.
func (s *Service) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	start := time.Now()
	defer func() { s.observe("withdraw", start, err) }()

	if amount.Sign() <= 0 {
		return decimal.Zero, models.ErrInvalidAmount
	}

	unlock := s.locks.lock(accountNumber)
	defer unlock()

	account, err := s.store.FindAccount(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}

	previous := account.Balance
	if err = account.Withdraw(amount); err != nil {
		return decimal.Zero, err
	}
	if err = s.persistMutation(ctx, account, previous, models.TxWithdrawal, amount); err != nil {
		return decimal.Zero, err
	}

	s.log.Infof("Withdrawal of %s from %s, new balance %s", amount, accountNumber, account.Balance)
	return account.Balance, nil
}

// persistMutation writes the new balance and the log entry. If the log
// append fails the balance write is compensated, so a failed operation
// leaves the account as it was.
func (s *Service) persistMutation(ctx context.Context, account *models.Account, previous decimal.Decimal, txType string, amount decimal.Decimal) error {
	if err := s.store.UpdateBalance(ctx, account.AccountNumber, account.Balance); err != nil {
		return err
	}
	if err := s.store.RecordTransaction(ctx, account.AccountNumber, txType, amount); err != nil {
		if restoreErr := s.store.UpdateBalance(ctx, account.AccountNumber, previous); restoreErr != nil {
			s.log.Errorf("Failed to restore balance for %s after log error: %v", account.AccountNumber, restoreErr)
		}
		return err
	}
	return nil
}

// Transfer moves amount between two accounts as one all-or-nothing
// operation. Both accounts' locks are held for the whole call.
func (s *Service) Transfer(ctx context.Context, fromNumber, toNumber string, amount decimal.Decimal) (err error) {
	start := time.Now()
	defer func() { s.observe("transfer", start, err) }()

	if amount.Sign() <= 0 {
		return models.ErrInvalidAmount
	}
	if fromNumber == toNumber {
		return models.ErrSelfTransfer
	}

	unlock := s.locks.lockPair(fromNumber, toNumber)
	defer unlock()

	from, err := s.store.FindAccount(ctx, fromNumber)
	if err != nil {
		return err
	}
	to, err := s.store.FindAccount(ctx, toNumber)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrUnknownRecipient
	}
	if err != nil {
		return err
	}

	if err = from.Withdraw(amount); err != nil {
		return err
	}
	if err = to.Deposit(amount); err != nil {
		return err
	}

	if err = s.store.TransferFunds(ctx, from, to, amount); err != nil {
		return err
	}

	s.log.Infof("Transferred %s from %s to %s", amount, fromNumber, toNumber)
	return nil
}

// ChangePassword rotates the account password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, accountNumber, oldPassword, newPassword string) (err error) {
	start := time.Now()
	defer func() { s.observe("change_password", start, err) }()

	if len(newPassword) < minPasswordLength {
		return models.ErrPasswordTooShort
	}

	account, err := s.store.FindAccount(ctx, accountNumber)
	if err != nil {
		return err
	}
	if err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return models.ErrWrongOldPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err = s.store.UpdatePassword(ctx, accountNumber, string(hashed)); err != nil {
		return err
	}

	s.log.Infof("Password changed for %s", accountNumber)
	return nil
}

// History lists the account's log entries most-recent-first.
func (s *Service) History(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	return s.store.TransactionHistory(ctx, accountNumber)
}

// RecoverAccountNumber resolves an account number from the identity pair
// used at account opening.
func (s *Service) RecoverAccountNumber(ctx context.Context, govtID, contact string) (string, error) {
	return s.store.FindByIdentityAndContact(ctx, govtID, contact)
}

// ListAccounts returns the full account listing for administrative use.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// FindAccount returns one account by number.
func (s *Service) FindAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	return s.store.FindAccount(ctx, accountNumber)
}

// RegisterComplaint persists the complaint, then notifies the service desk
// on a best-effort basis.
func (s *Service) RegisterComplaint(ctx context.Context, kind models.ComplaintKind, details string) (err error) {
	start := time.Now()
	defer func() { s.observe("register_complaint", start, err) }()

	if err = s.store.SaveComplaint(ctx, kind, details); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ComplaintRegistered()
	}
	s.log.Infof("New complaint registered. Type: %s", kind)

	if s.notify != nil && s.notify.Enabled() {
		if sendErr := s.notify.SendComplaintNotice(kind, details, time.Now()); sendErr != nil {
			s.log.Warnf("Complaint notice delivery failed: %v", sendErr)
		}
	}
	return nil
}

// AllComplaints returns complaints grouped by kind.
func (s *Service) AllComplaints(ctx context.Context) (map[models.ComplaintKind][]models.Complaint, error) {
	return s.store.AllComplaints(ctx)
}

// RefreshMetrics republishes the balance and account-count gauges from the
// current account listing. Wired to the cron scheduler in main.
func (s *Service) RefreshMetrics(ctx context.Context) error {
	if s.metrics == nil {
		return nil
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	s.metrics.SetAccountsTotal(len(accounts))
	for _, account := range accounts {
		balance, _ := account.Balance.Float64()
		s.metrics.SetAccountBalance(account.AccountNumber, string(account.Kind), balance)
	}
	return nil
}
