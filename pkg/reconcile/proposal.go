package reconcile

import (
	"time"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
)

// DefaultPlaceholderAccount is the counter-posting account for freshly
// synthesized drafts, intended for manual correction during review.
const DefaultPlaceholderAccount = "Expenses:FIXME"

// Proposal is a draft ledger entry synthesized from a pending export record,
// ready for the review workflow. Exactly one of Transaction and Balance is
// set. Provenance points back to the raw export row.
type Proposal struct {
	Date        time.Time
	Transaction *ledger.Transaction
	Balance     *ledger.BalanceAssertion

	File string
	Line int
}

// NewTransactionProposal builds a two-posting draft from a pending record:
// the resolved account carries the signed amount together with date and
// source_desc metadata (the fields future runs extract the match key from),
// and the placeholder account carries the negated amount, left for the user
// to resolve.
func NewTransactionProposal(record ResolvedRecord, placeholderAccount string) Proposal {
	if placeholderAccount == "" {
		placeholderAccount = DefaultPlaceholderAccount
	}

	txn := &ledger.Transaction{
		Date:      record.Date,
		Flag:      "*",
		Narration: record.Description,
		Postings: []ledger.Posting{
			{
				Account: record.Account,
				Amount:  record.Amount,
				Metadata: map[string]string{
					"date":        record.Date.Format(ledger.DateLayout),
					"source_desc": record.Description,
				},
			},
			{
				Account: placeholderAccount,
				Amount:  record.Amount.Neg(),
			},
		},
	}

	return Proposal{
		Date:        record.Date,
		Transaction: txn,
		File:        record.File,
		Line:        record.Line,
	}
}

// NewBalanceProposal builds a balance assertion from a snapshot. The export
// labels a balance for day D with the state as of the start of day D+1, so
// the assertion is dated one day after the snapshot.
func NewBalanceProposal(balance ResolvedBalance) Proposal {
	date := balance.Date.AddDate(0, 0, 1)

	return Proposal{
		Date: date,
		Balance: &ledger.BalanceAssertion{
			Date:    date,
			Account: balance.Account,
			Amount:  balance.Amount,
		},
		File: balance.File,
		Line: balance.Line,
	}
}

// Proposals synthesizes drafts for everything pending in a result:
// transactions first in loader order, then balance assertions.
func (r *Result) Proposals(placeholderAccount string) []Proposal {
	proposals := make([]Proposal, 0, len(r.PendingTransactions)+len(r.PendingBalances))
	for _, record := range r.PendingTransactions {
		proposals = append(proposals, NewTransactionProposal(record, placeholderAccount))
	}
	for _, balance := range r.PendingBalances {
		proposals = append(proposals, NewBalanceProposal(balance))
	}
	return proposals
}

// Render formats a proposal as Beancount text.
func (p Proposal) Render() string {
	if p.Transaction != nil {
		return ledger.FormatTransaction(*p.Transaction)
	}
	return ledger.FormatBalance(*p.Balance)
}
