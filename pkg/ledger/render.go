package ledger

import (
	"fmt"
	"strings"
)

// Width to which account names are padded before the amount column.
const amountColumn = 60

// FormatTransaction renders a transaction as Beancount text.
func FormatTransaction(txn Transaction) string {
	var sb strings.Builder

	sb.WriteString(txn.Date.Format(DateLayout))
	sb.WriteString(" ")
	sb.WriteString(txn.Flag)
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %q", txn.Payee))
	}
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	sb.WriteString("\n")

	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		spaces := amountColumn - 2 - len(posting.Account)
		if spaces < 1 {
			spaces = 1
		}
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(posting.Amount.String())
		sb.WriteString("\n")

		if v, ok := posting.Metadata["date"]; ok {
			sb.WriteString(fmt.Sprintf("    date: %s\n", v))
		}
		if v, ok := posting.Metadata["source_desc"]; ok {
			sb.WriteString(fmt.Sprintf("    source_desc: %q\n", v))
		}
	}

	return sb.String()
}

// FormatBalance renders a balance assertion as Beancount text.
func FormatBalance(balance BalanceAssertion) string {
	var sb strings.Builder

	sb.WriteString(balance.Date.Format(DateLayout))
	sb.WriteString(" balance ")
	sb.WriteString(balance.Account)

	spaces := amountColumn - 2 - len(balance.Account)
	if spaces < 1 {
		spaces = 1
	}
	sb.WriteString(strings.Repeat(" ", spaces))
	sb.WriteString(balance.Amount.String())
	sb.WriteString("\n")

	return sb.String()
}
