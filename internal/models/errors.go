package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Business outcomes are sentinel values so callers can branch with
// errors.Is; infrastructure failures travel separately as wrapped store
// errors and must never be mistaken for a business rejection.
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrSelfTransfer           = errors.New("cannot transfer to the same account")
	ErrUnknownRecipient       = errors.New("recipient account not found")
	ErrNotFound               = errors.New("account not found")
	ErrWrongOldPassword       = errors.New("old password does not match")
	ErrInvalidInitialBalance  = errors.New("initial balance must be at least 1500")
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrUnknownAccountKind     = errors.New("unknown account kind")
	ErrUnknownComplaintKind   = errors.New("unknown complaint kind")
)

// InsufficientFundsError reports a withdrawal that would drop the balance
// below the account kind's floor. It carries the violated floor so the
// presentation layer can build its own message.
type InsufficientFundsError struct {
	Floor   decimal.Decimal
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s, floor %s",
		e.Balance.String(), e.Amount.String(), e.Floor.String())
}

// IsInsufficientFunds reports whether err is a floor violation.
func IsInsufficientFunds(err error) bool {
	var ife *InsufficientFundsError
	return errors.As(err, &ife)
}
