// Package memory implements the LedgerStore contract on in-process maps.
// It backs unit tests and the dev-mode server; no state survives restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
	"bank-ledger/internal/store"
)

// Compile-time check: *Store must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Store)(nil)

// Store keeps accounts, transaction log and complaints in maps guarded by
// one RWMutex. Every operation is atomic with respect to the others, which
// matches the all-or-nothing unit-of-work contract.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*models.Account
	log        map[string][]models.Transaction
	complaints []models.Complaint
	seq        int64
}

// NewStore initializes an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		log:      make(map[string][]models.Transaction),
	}
}

func copyAccount(a *models.Account) *models.Account {
	clone := *a
	if a.ProfilePhoto != nil {
		clone.ProfilePhoto = append([]byte(nil), a.ProfilePhoto...)
	}
	return &clone
}

// CreateAccount persists a new account.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountNumber]; exists {
		return models.ErrDuplicateAccountNumber
	}
	s.accounts[account.AccountNumber] = copyAccount(account)
	return nil
}

// FindAccount returns a copy of the account or models.ErrNotFound.
func (s *Store) FindAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[accountNumber]
	if !exists {
		return nil, models.ErrNotFound
	}
	return copyAccount(account), nil
}

// AccountExists reports whether the account number is taken.
func (s *Store) AccountExists(ctx context.Context, accountNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.accounts[accountNumber]
	return exists, nil
}

// UpdateBalance overwrites the stored balance.
func (s *Store) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountNumber]
	if !exists {
		return models.ErrNotFound
	}
	account.Balance = balance
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, accountNumber, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountNumber]
	if !exists {
		return models.ErrNotFound
	}
	account.PasswordHash = newHash
	return nil
}

// RecordTransaction appends one log entry with a store-assigned timestamp
// and monotonic sequence number.
func (s *Store) RecordTransaction(ctx context.Context, accountNumber, txType string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendEntry(accountNumber, txType, amount)
	return nil
}

// appendEntry must be called with the write lock held.
func (s *Store) appendEntry(accountNumber, txType string, amount decimal.Decimal) {
	s.seq++
	s.log[accountNumber] = append(s.log[accountNumber], models.Transaction{
		ID:            uuid.New().String(),
		AccountNumber: accountNumber,
		Sequence:      s.seq,
		Timestamp:     time.Now(),
		Type:          txType,
		Amount:        amount,
	})
}

// TransactionHistory lists entries most-recent-first.
func (s *Store) TransactionHistory(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.log[accountNumber]
	history := make([]models.Transaction, len(entries))
	for i, entry := range entries {
		history[len(entries)-1-i] = entry
	}
	return history, nil
}

// ListAccounts returns all accounts ordered by customer name.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, *copyAccount(account))
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CustomerName < accounts[j].CustomerName
	})
	return accounts, nil
}

// FindByIdentityAndContact resolves an account number for the recovery flow.
func (s *Store) FindByIdentityAndContact(ctx context.Context, govtID, contact string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.GovtID == govtID && account.ContactNumber == contact {
			return account.AccountNumber, nil
		}
	}
	return "", models.ErrNotFound
}

// SaveComplaint appends a complaint.
func (s *Store) SaveComplaint(ctx context.Context, kind models.ComplaintKind, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.complaints = append(s.complaints, models.Complaint{
		Kind:      kind,
		Details:   details,
		Timestamp: time.Now(),
	})
	return nil
}

// AllComplaints returns complaints grouped by kind, newest first.
func (s *Store) AllComplaints(ctx context.Context) (map[models.ComplaintKind][]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := map[models.ComplaintKind][]models.Complaint{
		models.ComplaintScam:  {},
		models.ComplaintOther: {},
	}
	for i := len(s.complaints) - 1; i >= 0; i-- {
		c := s.complaints[i]
		if _, ok := grouped[c.Kind]; ok {
			grouped[c.Kind] = append(grouped[c.Kind], c)
		}
	}
	return grouped, nil
}

// TransferFunds applies both balances and both log entries under one lock
// acquisition, so no partial state is ever observable.
func (s *Store) TransferFunds(ctx context.Context, from, to *models.Account, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, exists := s.accounts[from.AccountNumber]
	if !exists {
		return models.ErrNotFound
	}
	dest, exists := s.accounts[to.AccountNumber]
	if !exists {
		return models.ErrNotFound
	}

	source.Balance = from.Balance
	dest.Balance = to.Balance
	s.appendEntry(from.AccountNumber, models.TransferOutType(to.AccountNumber), amount)
	s.appendEntry(to.AccountNumber, models.TransferInType(from.AccountNumber), amount)
	return nil
}
