package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKind selects the withdrawal policy for an account. The set is
// closed: only the two kinds below exist.
type AccountKind string

const (
	KindSavings AccountKind = "Savings"
	KindCurrent AccountKind = "Current"
)

var (
	savingsFloor = decimal.NewFromInt(1000)
	currentFloor = decimal.NewFromInt(-5000)
)

// ParseAccountKind validates a kind string coming from the boundary.
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(s) {
	case KindSavings:
		return KindSavings, nil
	case KindCurrent:
		return KindCurrent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountKind, s)
}

// FloorFor returns the minimum balance an account of the given kind may
// hold after a withdrawal: 1000 for Savings, -5000 for Current (overdraft
// allowance).
func FloorFor(kind AccountKind) decimal.Decimal {
	if kind == KindCurrent {
		return currentFloor
	}
	return savingsFloor
}

// Account represents a customer account. Balance mutations go through
// Deposit and Withdraw only; persisting the result is the caller's concern.
type Account struct {
	AccountNumber string          `json:"account_number"`
	CustomerName  string          `json:"customer_name"`
	Address       string          `json:"address"`
	ContactNumber string          `json:"contact_number"`
	GovtID        string          `json:"govt_id"`
	Age           int             `json:"age"`
	Kind          AccountKind     `json:"kind"`
	Balance       decimal.Decimal `json:"balance"`
	ProfilePhoto  []byte          `json:"profile_photo,omitempty"`
	PasswordHash  string          `json:"-"` // Not serialized
}

// Deposit increases the balance. Amount must be positive; deposits have no
// upper bound.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw decreases the balance, enforcing the kind-specific floor.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	floor := FloorFor(a.Kind)
	remaining := a.Balance.Sub(amount)
	if remaining.Cmp(floor) < 0 {
		return &InsufficientFundsError{
			Floor:   floor,
			Balance: a.Balance,
			Amount:  amount,
		}
	}
	a.Balance = remaining
	return nil
}
