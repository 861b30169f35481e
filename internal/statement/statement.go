// Package statement renders an account statement document from the
// account identity and its ordered transaction history.
package statement

import (
	"time"

	"github.com/beevik/etree"

	"bank-ledger/internal/models"
)

// Generate builds the XML statement for one account: identity header plus
// every log entry, most recent first, exactly as history returns them.
func Generate(account *models.Account, history []models.Transaction) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("statement")
	root.CreateAttr("generated_at", time.Now().Format(time.RFC3339))

	holder := root.CreateElement("account")
	holder.CreateElement("number").SetText(account.AccountNumber)
	holder.CreateElement("customer_name").SetText(account.CustomerName)
	holder.CreateElement("kind").SetText(string(account.Kind))
	holder.CreateElement("balance").SetText(account.Balance.StringFixed(2))

	entries := root.CreateElement("transactions")
	for _, tx := range history {
		entry := entries.CreateElement("transaction")
		entry.CreateAttr("timestamp", tx.Timestamp.Format(time.RFC3339))
		entry.CreateElement("type").SetText(tx.Type)
		entry.CreateElement("amount").SetText(tx.Amount.StringFixed(2))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
