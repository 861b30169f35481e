// Package store defines the persisted-authority boundary for accounts,
// the transaction log and complaints. Implementations live in the
// postgres and memory subpackages.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
)

// LedgerStore is the persistence contract the ledger service is written
// against. Absence of a row is reported with models.ErrNotFound (a routine
// outcome, distinguished from infrastructure failures by errors.Is).
//
// UpdateBalance overwrites the stored balance unconditionally; the service
// serializes balance mutations per account before calling it.
type LedgerStore interface {
	// CreateAccount persists a brand-new account. Fails with
	// models.ErrDuplicateAccountNumber if the number is taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// FindAccount returns the account or models.ErrNotFound.
	FindAccount(ctx context.Context, accountNumber string) (*models.Account, error)

	// AccountExists reports whether the number is already assigned.
	AccountExists(ctx context.Context, accountNumber string) (bool, error)

	// UpdateBalance overwrites the stored balance for the account number.
	UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, accountNumber, newHash string) error

	// RecordTransaction appends one immutable log entry.
	RecordTransaction(ctx context.Context, accountNumber, txType string, amount decimal.Decimal) error

	// TransactionHistory lists an account's log entries most-recent-first
	// (timestamp descending, sequence number breaking ties).
	TransactionHistory(ctx context.Context, accountNumber string) ([]models.Transaction, error)

	// ListAccounts returns all accounts ordered by customer name.
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// FindByIdentityAndContact returns the account number matching both
	// the government ID and the contact number, or models.ErrNotFound.
	FindByIdentityAndContact(ctx context.Context, govtID, contact string) (string, error)

	// SaveComplaint appends a complaint with a store-assigned timestamp.
	SaveComplaint(ctx context.Context, kind models.ComplaintKind, details string) error

	// AllComplaints returns complaints grouped by kind, newest first.
	AllComplaints(ctx context.Context) (map[models.ComplaintKind][]models.Complaint, error)

	// TransferFunds persists both updated balances and appends the
	// TRANSFER_OUT/TRANSFER_IN entries as one all-or-nothing unit of work.
	// The accounts carry their post-transfer balances; on any error the
	// stored state of both accounts is unchanged.
	TransferFunds(ctx context.Context, from, to *models.Account, amount decimal.Decimal) error
}
