package reconcile

import (
	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
	"github.com/pigeonworks-llc/beanrecon/pkg/source"
)

// MatchKey is the composite natural key associating an export record with a
// recorded ledger posting. Two distinct real-world transactions sharing all
// four fields are indistinguishable and are treated as separate occurrences
// of the same key, never merged.
//
// All fields are strings so the key is comparable and identical whichever
// side it was derived from: dates in ledger.DateLayout, amounts in the
// canonical "number currency" form.
type MatchKey struct {
	Account     string
	Date        string
	Amount      string
	Description string
}

// KeyFromRecord computes the key for an export record resolved to a ledger
// account.
func KeyFromRecord(record source.Record, account string) MatchKey {
	return MatchKey{
		Account:     account,
		Date:        record.Date.Format(ledger.DateLayout),
		Amount:      record.Amount.String(),
		Description: record.Description,
	}
}

// KeyFromPosting computes the key for a recorded ledger posting. The view's
// MatchDate already honors any date correction made in the ledger.
func KeyFromPosting(view ledger.PostingView) MatchKey {
	return MatchKey{
		Account:     view.Account,
		Date:        view.MatchDate.Format(ledger.DateLayout),
		Amount:      view.Amount.String(),
		Description: view.SourceDesc,
	}
}
