package reconcile

import (
	"sort"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
	"github.com/pigeonworks-llc/beanrecon/pkg/source"
)

// ResolvedRecord is an export record whose external account id has been
// resolved to a ledger account. The original record is kept intact.
type ResolvedRecord struct {
	source.Record
	Account string
}

// ResolvedBalance is a balance snapshot resolved to a ledger account.
type ResolvedBalance struct {
	source.BalanceRecord
	Account string
}

// Result is the outcome of one reconciliation run. Matched records are not
// materialized; they require no action.
type Result struct {
	// PendingTransactions are export records with no corresponding ledger
	// posting, in loader order.
	PendingTransactions []ResolvedRecord

	// PendingBalances are resolved balance snapshots; balance assertions are
	// re-proposed on every run and deduplicated by the review step.
	PendingBalances []ResolvedBalance

	// InvalidPostings are recorded ledger postings no longer corroborated by
	// the export.
	InvalidPostings []ledger.PostingView

	// MissingAccounts are external account ids with no ledger mapping,
	// sorted and de-duplicated.
	MissingAccounts []string

	// MatchedCount is the number of export records consumed by existing
	// ledger postings.
	MatchedCount int
}

// Reconcile classifies export records against the recorded ledger by
// multiset key matching.
//
// Ledger postings on mapped accounts are grouped by key into multisets; a
// key may legitimately have multiplicity above one when identical real
// transactions occurred. Records are processed in loader order (ascending
// date, file-reverse tiebreak): while a record's key has remaining
// multiplicity one occurrence is consumed and the record is matched,
// otherwise the record is pending. Postings never consumed are invalid.
// Within a key group the specific posting consumed first is unspecified;
// only the counts are guaranteed.
func Reconcile(records []source.Record, balances []source.BalanceRecord, postings []ledger.PostingView, mapping *AccountMapping) *Result {
	result := &Result{}
	missing := make(map[string]bool)

	// Group matchable ledger postings by key, keeping overall posting order
	// so invalid postings are reported in ledger order.
	remaining := make(map[MatchKey][]int)
	consumed := make([]bool, len(postings))
	matchable := make([]bool, len(postings))
	for i, view := range postings {
		if !mapping.IsMappedAccount(view.Account) {
			continue
		}
		matchable[i] = true
		key := KeyFromPosting(view)
		remaining[key] = append(remaining[key], i)
	}

	for _, record := range records {
		account, ok := mapping.LedgerAccount(record.ExternalAccountID)
		if !ok {
			missing[record.ExternalAccountID] = true
			continue
		}

		key := KeyFromRecord(record, account)
		if indexes := remaining[key]; len(indexes) > 0 {
			consumed[indexes[0]] = true
			remaining[key] = indexes[1:]
			result.MatchedCount++
			continue
		}

		result.PendingTransactions = append(result.PendingTransactions, ResolvedRecord{Record: record, Account: account})
	}

	for i, view := range postings {
		if matchable[i] && !consumed[i] {
			result.InvalidPostings = append(result.InvalidPostings, view)
		}
	}

	for _, balance := range balances {
		account, ok := mapping.LedgerAccount(balance.ExternalAccountID)
		if !ok {
			missing[balance.ExternalAccountID] = true
			continue
		}
		result.PendingBalances = append(result.PendingBalances, ResolvedBalance{BalanceRecord: balance, Account: account})
	}

	for id := range missing {
		result.MissingAccounts = append(result.MissingAccounts, id)
	}
	sort.Strings(result.MissingAccounts)

	return result
}

// Warnings renders the human-readable warnings for a result.
func (r *Result) Warnings() []string {
	warnings := make([]string, 0, len(r.MissingAccounts))
	for _, id := range r.MissingAccounts {
		warnings = append(warnings, "No ledger account associated with external account identifier "+id)
	}
	return warnings
}
