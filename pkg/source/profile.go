// Package source loads third-party CSV transaction exports into normalized
// records for reconciliation.
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default schema values, matching the aggregation service's export format.
const (
	DefaultDateColumn        = "Date"
	DefaultDescriptionColumn = "Description"
	DefaultCurrencyColumn    = "Currency"
	DefaultDateFormat        = "2006-01-02"
	DefaultBalanceSentinel   = "Total balance"
)

// Profile describes the column schema of an export file. The export carries
// no stable identifiers of its own, so the profile pins down exactly which
// columns matter: the header of AccountColumn doubles as the external account
// identifier for every row in the file, and AmountColumn holds the signed
// amount with the sign encoded as a leading '-' character.
type Profile struct {
	// Columns is the exact ordered header the file must carry.
	Columns []string `yaml:"columns"`

	// AccountColumn names the column whose header is the external account id.
	AccountColumn string `yaml:"account_column"`

	// AmountColumn names the column holding the signed amount.
	AmountColumn string `yaml:"amount_column"`

	DateColumn        string `yaml:"date_column"`
	DescriptionColumn string `yaml:"description_column"`
	CurrencyColumn    string `yaml:"currency_column"`

	// DateFormat is a Go reference-time layout. Default: 2006-01-02.
	DateFormat string `yaml:"date_format"`

	// BalanceSentinel is the description value marking balance snapshot rows.
	BalanceSentinel string `yaml:"balance_sentinel"`
}

// LoadProfile loads a Profile from a YAML file, applies defaults, and
// validates it.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	profile.applyDefaults()
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return &profile, nil
}

func (p *Profile) applyDefaults() {
	if p.DateColumn == "" {
		p.DateColumn = DefaultDateColumn
	}
	if p.DescriptionColumn == "" {
		p.DescriptionColumn = DefaultDescriptionColumn
	}
	if p.CurrencyColumn == "" {
		p.CurrencyColumn = DefaultCurrencyColumn
	}
	if p.DateFormat == "" {
		p.DateFormat = DefaultDateFormat
	}
	if p.BalanceSentinel == "" {
		p.BalanceSentinel = DefaultBalanceSentinel
	}
}

// Validate checks that the profile is internally consistent: every named
// column must appear in the declared header.
func (p *Profile) Validate() error {
	if len(p.Columns) == 0 {
		return fmt.Errorf("columns must not be empty")
	}
	if p.AccountColumn == "" {
		return fmt.Errorf("account_column is required")
	}
	if p.AmountColumn == "" {
		return fmt.Errorf("amount_column is required")
	}

	for _, name := range []string{p.AccountColumn, p.AmountColumn, p.DateColumn, p.DescriptionColumn, p.CurrencyColumn} {
		if !p.hasColumn(name) {
			return fmt.Errorf("column %q not present in declared columns %v", name, p.Columns)
		}
	}

	return nil
}

func (p *Profile) hasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// columnIndex returns the position of a column in the header.
// Validate guarantees the column exists.
func (p *Profile) columnIndex(name string) int {
	for i, c := range p.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
