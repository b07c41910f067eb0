// Package reconcile classifies export records against the recorded ledger.
// Matching is purely key-based: the export carries no usable unique
// identifiers, so equality of (account, date, amount, description) is the
// sole association criterion.
package reconcile

import (
	"fmt"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
)

// DefaultAccountMetaKey is the account metadata key holding the external
// account identifier on a ledger open directive.
const DefaultAccountMetaKey = "source_id"

// AccountMapping is the bidirectional association between external account
// identifiers and ledger account names, built once per run from account
// metadata.
type AccountMapping struct {
	externalToAccount map[string]string
	accountToExternal map[string]string
}

// BuildAccountMapping scans ledger accounts for the given metadata key and
// builds the mapping. Accounts without the key are simply not mapped; the
// user may intentionally exclude some external accounts. A duplicate on
// either side is a configuration error, not a silent last-wins.
func BuildAccountMapping(accounts []ledger.Account, metaKey string) (*AccountMapping, error) {
	if metaKey == "" {
		metaKey = DefaultAccountMetaKey
	}

	m := &AccountMapping{
		externalToAccount: make(map[string]string),
		accountToExternal: make(map[string]string),
	}

	for _, account := range accounts {
		externalID, ok := account.Metadata[metaKey]
		if !ok || externalID == "" {
			continue
		}

		if existing, ok := m.externalToAccount[externalID]; ok && existing != account.Name {
			return nil, fmt.Errorf("external id %q is associated with both %s and %s", externalID, existing, account.Name)
		}
		if existing, ok := m.accountToExternal[account.Name]; ok && existing != externalID {
			return nil, fmt.Errorf("account %s carries both external ids %q and %q", account.Name, existing, externalID)
		}

		m.externalToAccount[externalID] = account.Name
		m.accountToExternal[account.Name] = externalID
	}

	return m, nil
}

// LedgerAccount returns the ledger account for an external id.
func (m *AccountMapping) LedgerAccount(externalID string) (string, bool) {
	account, ok := m.externalToAccount[externalID]
	return account, ok
}

// ExternalID returns the external id for a ledger account.
func (m *AccountMapping) ExternalID(account string) (string, bool) {
	externalID, ok := m.accountToExternal[account]
	return externalID, ok
}

// IsMappedAccount reports whether a ledger account participates in the
// mapping. Only postings on mapped accounts are considered for matching.
func (m *AccountMapping) IsMappedAccount(account string) bool {
	_, ok := m.accountToExternal[account]
	return ok
}

// Len returns the number of mapped account pairs.
func (m *AccountMapping) Len() int {
	return len(m.externalToAccount)
}
