package reconcile

import (
	"testing"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
)

func TestBuildAccountMapping(t *testing.T) {
	accounts := []ledger.Account{
		{Name: "Liabilities:Credit-Card", Metadata: map[string]string{"source_id": "My Credit Card"}},
		{Name: "Assets:Checking", Metadata: map[string]string{"source_id": "My Checking"}},
		{Name: "Expenses:Coffee", Metadata: map[string]string{}},
	}

	mapping, err := BuildAccountMapping(accounts, "source_id")
	if err != nil {
		t.Fatalf("BuildAccountMapping: %v", err)
	}

	if mapping.Len() != 2 {
		t.Errorf("Len() = %d, want 2", mapping.Len())
	}

	account, ok := mapping.LedgerAccount("My Checking")
	if !ok || account != "Assets:Checking" {
		t.Errorf("LedgerAccount = %q, %v", account, ok)
	}

	externalID, ok := mapping.ExternalID("Liabilities:Credit-Card")
	if !ok || externalID != "My Credit Card" {
		t.Errorf("ExternalID = %q, %v", externalID, ok)
	}

	if _, ok := mapping.LedgerAccount("Nope"); ok {
		t.Error("LedgerAccount should miss for unknown id")
	}
	if mapping.IsMappedAccount("Expenses:Coffee") {
		t.Error("account without metadata must not be mapped")
	}
}

func TestBuildAccountMappingRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		accounts []ledger.Account
	}{
		{
			"same external id on two accounts",
			[]ledger.Account{
				{Name: "Assets:A", Metadata: map[string]string{"source_id": "Shared"}},
				{Name: "Assets:B", Metadata: map[string]string{"source_id": "Shared"}},
			},
		},
		{
			"same account opened with two ids",
			[]ledger.Account{
				{Name: "Assets:A", Metadata: map[string]string{"source_id": "One"}},
				{Name: "Assets:A", Metadata: map[string]string{"source_id": "Two"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildAccountMapping(tt.accounts, "source_id"); err == nil {
				t.Error("expected configuration error, got nil")
			}
		})
	}
}

func TestBuildAccountMappingDefaultKey(t *testing.T) {
	accounts := []ledger.Account{
		{Name: "Assets:A", Metadata: map[string]string{"source_id": "X"}},
	}
	mapping, err := BuildAccountMapping(accounts, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mapping.LedgerAccount("X"); !ok {
		t.Error("empty metaKey should fall back to source_id")
	}
}

func TestBuildAccountMappingIdempotentReopen(t *testing.T) {
	// The same account re-opened with the same id (e.g. split across files)
	// is not a conflict.
	accounts := []ledger.Account{
		{Name: "Assets:A", Metadata: map[string]string{"source_id": "X"}},
		{Name: "Assets:A", Metadata: map[string]string{"source_id": "X"}},
	}
	if _, err := BuildAccountMapping(accounts, "source_id"); err != nil {
		t.Errorf("re-open with identical id should not error: %v", err)
	}
}
