package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
)

// Record is a normalized transaction row from the export. It is immutable
// once parsed; account resolution produces a new value elsewhere rather than
// mutating it.
type Record struct {
	// ExternalAccountID is the provider-side account identifier.
	ExternalAccountID string
	Date              time.Time
	Amount            ledger.Amount
	Description       string

	// Provenance back to the raw export.
	File string
	Line int
}

// BalanceRecord is a normalized balance snapshot row. The export encodes
// snapshots in the transaction schema, distinguished by a sentinel
// description value.
type BalanceRecord struct {
	ExternalAccountID string
	Date              time.Time
	Amount            ledger.Amount

	File string
	Line int
}

// FormatError reports a malformed export file: a header schema mismatch or a
// row-level parse failure. A FormatError rejects the whole file; no partial
// record sets are ever returned.
type FormatError struct {
	File  string
	Line  int    // 1-based data row, 0 if the error is not row-specific
	Value string // offending raw value, if any
	Msg   string
	Err   error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d", e.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Value != "" {
		fmt.Fprintf(&sb, ": %q", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// LoadTransactions parses the transactions export at path. Zero-amount rows
// and balance sentinel rows are excluded from the result. Records are
// returned ascending by date; rows sharing a date keep file-reverse order,
// which is the order the reconciliation engine resolves same-key ties in.
func LoadTransactions(path string, profile *Profile, currency string) ([]Record, error) {
	var records []Record

	err := readRows(path, profile, func(row []string, line int) error {
		description := row[profile.columnIndex(profile.DescriptionColumn)]
		rawAmount := row[profile.columnIndex(profile.AmountColumn)]

		number, err := parseSignedAmount(rawAmount)
		if err != nil {
			return &FormatError{File: path, Line: line, Value: rawAmount, Msg: "invalid amount", Err: err}
		}
		// Zero-amount rows are housekeeping noise from some institutions
		// (e.g. a waived annual fee); skipping them is intentional.
		if number.IsZero() || description == profile.BalanceSentinel {
			return nil
		}

		rawDate := row[profile.columnIndex(profile.DateColumn)]
		date, err := time.Parse(profile.DateFormat, rawDate)
		if err != nil {
			return &FormatError{File: path, Line: line, Value: rawDate, Msg: "invalid date", Err: err}
		}

		records = append(records, Record{
			ExternalAccountID: profile.AccountColumn,
			Date:              date,
			Amount:            ledger.NewAmount(number, currency),
			Description:       description,
			File:              path,
			Line:              line,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortRecords(records)
	return records, nil
}

// LoadBalances parses balance snapshot rows from path, which may be a single
// CSV file or a directory of CSV files sharing the transaction schema. Only
// rows whose description equals the balance sentinel are kept. The currency
// comes from the row's own currency column.
func LoadBalances(path string, profile *Profile) ([]BalanceRecord, error) {
	files, err := balanceFiles(path)
	if err != nil {
		return nil, err
	}

	var balances []BalanceRecord
	for _, file := range files {
		err := readRows(file, profile, func(row []string, line int) error {
			if row[profile.columnIndex(profile.DescriptionColumn)] != profile.BalanceSentinel {
				return nil
			}

			rawDate := row[profile.columnIndex(profile.DateColumn)]
			date, err := time.Parse(profile.DateFormat, rawDate)
			if err != nil {
				return &FormatError{File: file, Line: line, Value: rawDate, Msg: "invalid date", Err: err}
			}

			rawAmount := row[profile.columnIndex(profile.AmountColumn)]
			number, err := parseSignedAmount(rawAmount)
			if err != nil {
				return &FormatError{File: file, Line: line, Value: rawAmount, Msg: "invalid amount", Err: err}
			}

			balances = append(balances, BalanceRecord{
				ExternalAccountID: profile.AccountColumn,
				Date:              date,
				Amount:            ledger.NewAmount(number, row[profile.columnIndex(profile.CurrencyColumn)]),
				File:              file,
				Line:              line,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return balances, nil
}

// readRows opens a CSV file, validates its header against the profile, and
// invokes fn once per data row with 1-based row numbers. Any error aborts
// the whole file.
func readRows(path string, profile *Profile, fn func(row []string, line int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return &FormatError{File: path, Msg: "missing header", Err: err}
	}
	if !equalColumns(header, profile.Columns) {
		return &FormatError{
			File: path,
			Msg:  fmt.Sprintf("actual field names %q != expected field names %q", header, profile.Columns),
		}
	}

	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &FormatError{File: path, Line: line, Msg: "malformed row", Err: err}
		}
		if err := fn(row, line); err != nil {
			return err
		}
	}
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// parseSignedAmount parses an amount whose sign is encoded as a leading '-'
// character prefix rather than a numeric sign field.
func parseSignedAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if raw[0] == '-' {
		number, err := decimal.NewFromString(raw[1:])
		if err != nil {
			return decimal.Zero, err
		}
		return number.Neg(), nil
	}
	return decimal.NewFromString(raw)
}

// sortRecords orders records ascending by date with same-date rows in
// file-reverse order: reverse first, then a stable sort by date.
func sortRecords(records []Record) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// balanceFiles expands path into the list of CSV files to read.
func balanceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat balances path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan balances directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
