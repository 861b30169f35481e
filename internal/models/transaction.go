package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction log entry types. Transfer entries carry the peer account
// number in the type string, matching the stored representation.
const (
	TxDeposit        = "DEPOSIT"
	TxWithdrawal     = "WITHDRAWAL"
	TxInitialDeposit = "INITIAL DEPOSIT"
)

// TransferOutType builds the log entry type for the source side of a transfer.
func TransferOutType(toAccountNumber string) string {
	return fmt.Sprintf("TRANSFER_OUT to %s", toAccountNumber)
}

// TransferInType builds the log entry type for the destination side of a transfer.
func TransferInType(fromAccountNumber string) string {
	return fmt.Sprintf("TRANSFER_IN from %s", fromAccountNumber)
}

// Transaction is one immutable record of a balance-affecting event.
// Timestamp and Sequence are store-assigned; Sequence is monotonic per
// store and breaks ties between entries sharing a timestamp.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Sequence      int64           `json:"sequence"`
	Timestamp     time.Time       `json:"timestamp"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}
