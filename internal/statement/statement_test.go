package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/models"
)

func TestGenerate(t *testing.T) {
	account := &models.Account{
		AccountNumber: "BT1234567890",
		CustomerName:  "Alice",
		Kind:          models.KindSavings,
		Balance:       decimal.NewFromInt(3000),
	}
	history := []models.Transaction{
		{Type: models.TxWithdrawal, Amount: decimal.NewFromInt(500), Timestamp: time.Now()},
		{Type: models.TxInitialDeposit, Amount: decimal.NewFromInt(3500), Timestamp: time.Now().Add(-time.Hour)},
	}

	doc, err := Generate(account, history)
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}
	xml := string(doc)

	for _, want := range []string{
		"BT1234567890",
		"<customer_name>Alice</customer_name>",
		"<balance>3000.00</balance>",
		"WITHDRAWAL",
		"INITIAL DEPOSIT",
		"<amount>500.00</amount>",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("statement missing %q:\n%s", want, xml)
		}
	}

	if strings.Count(xml, "<transaction ") != 2 {
		t.Errorf("expected 2 transaction elements:\n%s", xml)
	}
}

func TestGenerateEmptyHistory(t *testing.T) {
	account := &models.Account{
		AccountNumber: "BT1234567890",
		CustomerName:  "Bob",
		Kind:          models.KindCurrent,
		Balance:       decimal.NewFromInt(-200),
	}
	doc, err := Generate(account, nil)
	if err != nil {
		t.Fatalf("Generate err=%v", err)
	}
	if !strings.Contains(string(doc), "<transactions/>") && !strings.Contains(string(doc), "<transactions></transactions>") {
		t.Errorf("expected empty transactions element:\n%s", doc)
	}
}
