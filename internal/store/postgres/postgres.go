// Package postgres implements the LedgerStore contract on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
	"bank-ledger/internal/store"
)

// Compile-time check: *Store must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Store)(nil)

// Store provides database operations for the ledger.
type Store struct {
	db *sql.DB
}

// NewStore initializes a new Postgres-backed ledger store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the ledger tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE SCHEMA IF NOT EXISTS bank;

	CREATE TABLE IF NOT EXISTS bank.accounts (
		account_number TEXT PRIMARY KEY,
		customer_name  TEXT NOT NULL,
		address        TEXT NOT NULL,
		contact_number TEXT NOT NULL,
		govt_id        TEXT NOT NULL,
		age            INTEGER NOT NULL,
		account_kind   TEXT NOT NULL,
		balance        NUMERIC(14,2) NOT NULL,
		profile_photo  BYTEA,
		password_hash  TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_identity
		ON bank.accounts(govt_id, contact_number);

	CREATE TABLE IF NOT EXISTS bank.transactions (
		id             TEXT PRIMARY KEY,
		seq            BIGSERIAL,
		account_number TEXT NOT NULL REFERENCES bank.accounts(account_number),
		transaction_type TEXT NOT NULL,
		amount         NUMERIC(14,2) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account
		ON bank.transactions(account_number, created_at DESC, seq DESC);

	CREATE TABLE IF NOT EXISTS bank.complaints (
		id         BIGSERIAL PRIMARY KEY,
		kind       TEXT NOT NULL,
		details    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CreateAccount persists a new account row.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO bank.accounts (account_number, customer_name, address, contact_number, govt_id, age, account_kind, balance, profile_photo, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		account.AccountNumber, account.CustomerName, account.Address,
		account.ContactNumber, account.GovtID, account.Age,
		string(account.Kind), account.Balance.StringFixed(2),
		account.ProfilePhoto, account.PasswordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.ErrDuplicateAccountNumber
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccount retrieves an account by number.
func (s *Store) FindAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `
		SELECT account_number, customer_name, address, contact_number, govt_id, age, account_kind, balance, profile_photo, password_hash
		FROM bank.accounts
		WHERE account_number = $1`
	return scanAccount(s.db.QueryRowContext(ctx, query, accountNumber))
}

// AccountExists reports whether the account number is taken.
func (s *Store) AccountExists(ctx context.Context, accountNumber string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM bank.accounts WHERE account_number = $1`, accountNumber).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return true, nil
}

// UpdateBalance overwrites the stored balance for the account number.
func (s *Store) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bank.accounts SET balance = $1 WHERE account_number = $2`,
		balance.StringFixed(2), accountNumber)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, accountNumber, newHash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bank.accounts SET password_hash = $1 WHERE account_number = $2`,
		newHash, accountNumber)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordTransaction appends one log entry for the account.
func (s *Store) RecordTransaction(ctx context.Context, accountNumber, txType string, amount decimal.Decimal) error {
	return recordTransaction(ctx, s.db, accountNumber, txType, amount)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func recordTransaction(ctx context.Context, db execer, accountNumber, txType string, amount decimal.Decimal) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO bank.transactions (id, account_number, transaction_type, amount) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), accountNumber, txType, amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// TransactionHistory lists an account's log entries most-recent-first.
func (s *Store) TransactionHistory(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	query := `
		SELECT id, seq, account_number, transaction_type, amount, created_at
		FROM bank.transactions
		WHERE account_number = $1
		ORDER BY created_at DESC, seq DESC`
	rows, err := s.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction history: %w", err)
	}
	defer rows.Close()

	var history []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr string
		if err := rows.Scan(&tx.ID, &tx.Sequence, &tx.AccountNumber, &tx.Type, &amountStr, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		history = append(history, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return history, nil
}

// ListAccounts returns all accounts ordered by customer name.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT account_number, customer_name, address, contact_number, govt_id, age, account_kind, balance, profile_photo, password_hash
		FROM bank.accounts
		ORDER BY customer_name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindByIdentityAndContact resolves an account number for the recovery flow.
func (s *Store) FindByIdentityAndContact(ctx context.Context, govtID, contact string) (string, error) {
	var accountNumber string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_number FROM bank.accounts WHERE govt_id = $1 AND contact_number = $2`,
		govtID, contact).Scan(&accountNumber)
	if err == sql.ErrNoRows {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find account by identity: %w", err)
	}
	return accountNumber, nil
}

// SaveComplaint appends a complaint row.
func (s *Store) SaveComplaint(ctx context.Context, kind models.ComplaintKind, details string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bank.complaints (kind, details) VALUES ($1, $2)`,
		string(kind), details)
	if err != nil {
		return fmt.Errorf("failed to save complaint: %w", err)
	}
	return nil
}

// AllComplaints returns complaints grouped by kind, newest first.
func (s *Store) AllComplaints(ctx context.Context) (map[models.ComplaintKind][]models.Complaint, error) {
	grouped := map[models.ComplaintKind][]models.Complaint{
		models.ComplaintScam:  {},
		models.ComplaintOther: {},
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, details, created_at FROM bank.complaints ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Complaint
		var kind string
		if err := rows.Scan(&kind, &c.Details, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		c.Kind = models.ComplaintKind(kind)
		if _, ok := grouped[c.Kind]; ok {
			grouped[c.Kind] = append(grouped[c.Kind], c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaint rows: %w", err)
	}
	return grouped, nil
}

// TransferFunds persists both balances and both transfer log entries in a
// single database transaction. Rows are locked FOR UPDATE in ascending
// account-number order so two opposing transfers cannot deadlock.
func (s *Store) TransferFunds(ctx context.Context, from, to *models.Account, amount decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer tx.Rollback()

	first, second := from.AccountNumber, to.AccountNumber
	if second < first {
		first, second = second, first
	}
	for _, number := range []string{first, second} {
		var one int
		if err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM bank.accounts WHERE account_number = $1 FOR UPDATE`, number).Scan(&one); err != nil {
			if err == sql.ErrNoRows {
				return models.ErrNotFound
			}
			return fmt.Errorf("failed to lock account %s: %w", number, err)
		}
	}

	for _, account := range []*models.Account{from, to} {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bank.accounts SET balance = $1 WHERE account_number = $2`,
			account.Balance.StringFixed(2), account.AccountNumber); err != nil {
			return fmt.Errorf("failed to update balance for %s: %w", account.AccountNumber, err)
		}
	}

	if err := recordTransaction(ctx, tx, from.AccountNumber, models.TransferOutType(to.AccountNumber), amount); err != nil {
		return err
	}
	if err := recordTransaction(ctx, tx, to.AccountNumber, models.TransferInType(from.AccountNumber), amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var kind, balanceStr string
	err := row.Scan(&account.AccountNumber, &account.CustomerName, &account.Address,
		&account.ContactNumber, &account.GovtID, &account.Age,
		&kind, &balanceStr, &account.ProfilePhoto, &account.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	account.Kind = models.AccountKind(kind)
	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	return account, nil
}
