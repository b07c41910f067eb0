package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
	"github.com/pigeonworks-llc/beanrecon/pkg/source"
)

const (
	testExternalID = "My Credit Card"
	testAccount    = "Liabilities:Credit-Card"
)

func testMapping(t *testing.T) *AccountMapping {
	t.Helper()
	mapping, err := BuildAccountMapping([]ledger.Account{
		{Name: testAccount, Metadata: map[string]string{"source_id": testExternalID}},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	return mapping
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(ledger.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func amount(t *testing.T, s string) ledger.Amount {
	t.Helper()
	n, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return ledger.NewAmount(n, "USD")
}

func record(t *testing.T, date, desc, amt string) source.Record {
	t.Helper()
	return source.Record{
		ExternalAccountID: testExternalID,
		Date:              mustDate(t, date),
		Amount:            amount(t, amt),
		Description:       desc,
		File:              "export.csv",
		Line:              1,
	}
}

func posting(t *testing.T, date, desc, amt string) ledger.PostingView {
	t.Helper()
	return ledger.PostingView{
		Account:    testAccount,
		MatchDate:  mustDate(t, date),
		Amount:     amount(t, amt),
		SourceDesc: desc,
		File:       "ledger/2016-08.beancount",
		Line:       10,
	}
}

func TestReconcileDuplicateFidelity(t *testing.T) {
	// Two identical rows against an empty ledger stay two separate drafts.
	records := []source.Record{
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
	}

	result := Reconcile(records, nil, nil, testMapping(t))

	if len(result.PendingTransactions) != 2 {
		t.Fatalf("got %d pending, want 2", len(result.PendingTransactions))
	}
	if len(result.InvalidPostings) != 0 {
		t.Errorf("got %d invalid, want 0", len(result.InvalidPostings))
	}
	for _, pending := range result.PendingTransactions {
		if pending.Account != testAccount {
			t.Errorf("resolved account = %q, want %q", pending.Account, testAccount)
		}
	}
}

func TestReconcileIdempotence(t *testing.T) {
	records := []source.Record{
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		record(t, "2016-08-11", "GROCERY OUTLET", "-15.50"),
	}
	postings := []ledger.PostingView{
		posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		posting(t, "2016-08-11", "GROCERY OUTLET", "-15.50"),
	}

	result := Reconcile(records, nil, postings, testMapping(t))

	if len(result.PendingTransactions) != 0 {
		t.Errorf("got %d pending, want 0", len(result.PendingTransactions))
	}
	if len(result.InvalidPostings) != 0 {
		t.Errorf("got %d invalid, want 0", len(result.InvalidPostings))
	}
	if result.MatchedCount != 2 {
		t.Errorf("matched = %d, want 2", result.MatchedCount)
	}
}

func TestReconcilePartialMatch(t *testing.T) {
	// N=3 identical rows, M=2 recorded postings: exactly N-M pending,
	// nothing invalid.
	records := []source.Record{
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
	}
	postings := []ledger.PostingView{
		posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
	}

	result := Reconcile(records, nil, postings, testMapping(t))

	if len(result.PendingTransactions) != 1 {
		t.Errorf("got %d pending, want 1", len(result.PendingTransactions))
	}
	if len(result.InvalidPostings) != 0 {
		t.Errorf("got %d invalid, want 0", len(result.InvalidPostings))
	}
	if result.MatchedCount != 2 {
		t.Errorf("matched = %d, want 2", result.MatchedCount)
	}
}

func TestReconcileOrphanDetection(t *testing.T) {
	postings := []ledger.PostingView{
		posting(t, "2016-08-10", "VANISHED ROW", "-9.99"),
	}

	result := Reconcile(nil, nil, postings, testMapping(t))

	if len(result.InvalidPostings) != 1 {
		t.Fatalf("got %d invalid, want 1", len(result.InvalidPostings))
	}
	if result.InvalidPostings[0].SourceDesc != "VANISHED ROW" {
		t.Errorf("invalid posting = %+v", result.InvalidPostings[0])
	}
}

func TestReconcileUnmappedAccount(t *testing.T) {
	rec := record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45")
	rec.ExternalAccountID = "Unknown Card"

	result := Reconcile([]source.Record{rec}, nil, nil, testMapping(t))

	if len(result.MissingAccounts) != 1 || result.MissingAccounts[0] != "Unknown Card" {
		t.Fatalf("missing accounts = %v, want [Unknown Card]", result.MissingAccounts)
	}
	if len(result.PendingTransactions) != 0 {
		t.Errorf("got %d pending, want 0", len(result.PendingTransactions))
	}
	if len(result.InvalidPostings) != 0 {
		t.Errorf("got %d invalid, want 0", len(result.InvalidPostings))
	}

	warnings := result.Warnings()
	if len(warnings) != 1 || warnings[0] != "No ledger account associated with external account identifier Unknown Card" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestReconcileRepeatedUnmappedIDWarnsOnce(t *testing.T) {
	records := []source.Record{
		record(t, "2016-08-10", "A", "-1.00"),
		record(t, "2016-08-11", "B", "-2.00"),
	}
	records[0].ExternalAccountID = "Unknown Card"
	records[1].ExternalAccountID = "Unknown Card"

	result := Reconcile(records, nil, nil, testMapping(t))

	if len(result.MissingAccounts) != 1 {
		t.Errorf("missing accounts = %v, want one entry", result.MissingAccounts)
	}
}

func TestReconcileIgnoresUnmappedPostings(t *testing.T) {
	// Postings on accounts outside the mapping never become invalid.
	unmapped := posting(t, "2016-08-10", "RENT", "-800.00")
	unmapped.Account = "Expenses:Rent"

	result := Reconcile(nil, nil, []ledger.PostingView{unmapped}, testMapping(t))

	if len(result.InvalidPostings) != 0 {
		t.Errorf("got %d invalid, want 0", len(result.InvalidPostings))
	}
}

func TestReconcileKeyDiscriminates(t *testing.T) {
	// Any single differing key field prevents a match.
	base := record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45")

	tests := []struct {
		name    string
		posting ledger.PostingView
	}{
		{"different date", posting(t, "2016-08-11", "STARBUCKS STORE 12345", "-2.45")},
		{"different amount", posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.46")},
		{"different description", posting(t, "2016-08-10", "STARBUCKS STORE 99999", "-2.45")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile([]source.Record{base}, nil, []ledger.PostingView{tt.posting}, testMapping(t))
			if len(result.PendingTransactions) != 1 {
				t.Errorf("got %d pending, want 1", len(result.PendingTransactions))
			}
			if len(result.InvalidPostings) != 1 {
				t.Errorf("got %d invalid, want 1", len(result.InvalidPostings))
			}
		})
	}
}

func TestReconcileAnnotatedDuplicateConsumesTwoRows(t *testing.T) {
	// A posting annotated with source_desc1 yields two views for the same
	// key, so a provider-duplicated row pair fully matches.
	records := []source.Record{
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		record(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
	}
	postings := []ledger.PostingView{
		posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
		posting(t, "2016-08-10", "STARBUCKS STORE 12345", "-2.45"),
	}

	result := Reconcile(records, nil, postings, testMapping(t))

	if len(result.PendingTransactions) != 0 || len(result.InvalidPostings) != 0 {
		t.Errorf("pending = %d, invalid = %d, want 0/0",
			len(result.PendingTransactions), len(result.InvalidPostings))
	}
}

func TestReconcileBalances(t *testing.T) {
	balances := []source.BalanceRecord{
		{ExternalAccountID: testExternalID, Date: mustDate(t, "2016-08-10"), Amount: amount(t, "-120.00")},
		{ExternalAccountID: "Unknown Card", Date: mustDate(t, "2016-08-10"), Amount: amount(t, "50.00")},
	}

	result := Reconcile(nil, balances, nil, testMapping(t))

	if len(result.PendingBalances) != 1 {
		t.Fatalf("got %d pending balances, want 1", len(result.PendingBalances))
	}
	if result.PendingBalances[0].Account != testAccount {
		t.Errorf("balance account = %q", result.PendingBalances[0].Account)
	}
	if len(result.MissingAccounts) != 1 {
		t.Errorf("missing accounts = %v", result.MissingAccounts)
	}
}
