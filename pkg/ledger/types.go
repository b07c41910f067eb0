// Package ledger provides read access to a Beancount ledger and rendering
// of draft entries produced by reconciliation.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a decimal number with a currency code.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount creates an Amount from a decimal number and currency code.
func NewAmount(number decimal.Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// String returns the canonical "number currency" representation,
// e.g. "-2.45 USD". Reconciliation keys depend on this form being stable.
func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// Neg returns the amount with the sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// IsZero reports whether the numeric part is exactly zero.
func (a Amount) IsZero() bool {
	return a.Number.IsZero()
}

// Equal reports whether two amounts have the same value and currency.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

// Account represents an account opened in the ledger, with the key/value
// metadata attached to its open directive.
type Account struct {
	Name     string
	Metadata map[string]string
}

// Posting represents a single posting line of a transaction.
type Posting struct {
	Account  string
	Amount   Amount
	Metadata map[string]string
}

// Transaction represents a Beancount transaction directive.
type Transaction struct {
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Postings  []Posting
}

// BalanceAssertion represents a Beancount balance directive.
type BalanceAssertion struct {
	Date    time.Time
	Account string
	Amount  Amount
}

// PostingView is a read-only projection of an existing ledger posting into
// the fields reconciliation matches on. MatchDate is taken from the
// posting's date metadata when present, so a date correction made in the
// ledger wins over the transaction's nominal date. A posting annotated with
// numbered source_desc1, source_desc2, ... metadata yields one view per
// description, which lets a hand-annotated known duplicate consume multiple
// export rows.
type PostingView struct {
	Account    string
	MatchDate  time.Time
	Amount     Amount
	SourceDesc string

	// Provenance within the ledger, for reporting.
	File string
	Line int
}
