package ledger

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format used throughout the ledger.
const DateLayout = "2006-01-02"

var (
	directivePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(\S+)\s*(.*)$`)
	metadataPattern  = regexp.MustCompile(`^([a-z][A-Za-z0-9_-]*):\s*(.*)$`)
	postingPattern   = regexp.MustCompile(`^([A-Z][A-Za-z0-9:-]*)(?:\s{2,}(-?[0-9][0-9,.]*)\s+([A-Z][A-Z0-9'._-]*))?$`)
	narrationPattern = regexp.MustCompile(`^(?:"((?:[^"\\]|\\.)*)"\s+)?"((?:[^"\\]|\\.)*)"`)
)

// parser accumulates directives from a single ledger file.
type parser struct {
	file     string
	accounts []Account
	postings []PostingView

	// Current transaction being assembled, if any.
	txn         *Transaction
	txnPostings []rawPosting

	// Current open directive being assembled, if any.
	open *Account
}

// rawPosting keeps the source line alongside the posting while the
// enclosing transaction is still being read.
type rawPosting struct {
	posting Posting
	line    int
}

// parseFile reads a single Beancount file and returns the accounts opened in
// it and the posting views extracted from its transactions. Directives other
// than open and transactions are ignored.
func parseFile(path string) ([]Account, []PostingView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	p := &parser{file: path}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		p.consumeLine(scanner.Text(), lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read ledger file %s: %w", path, err)
	}
	p.flush()

	return p.accounts, p.postings, nil
}

func (p *parser) consumeLine(raw string, lineNo int) {
	line := stripComment(raw)
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	indented := line[0] == ' ' || line[0] == '\t'
	if !indented {
		p.flush()
		p.consumeDirective(trimmed, lineNo)
		return
	}

	// Indented continuation of the current directive.
	switch {
	case p.open != nil:
		if m := metadataPattern.FindStringSubmatch(trimmed); m != nil {
			p.open.Metadata[m[1]] = unquote(m[2])
		}
	case p.txn != nil:
		if m := metadataPattern.FindStringSubmatch(trimmed); m != nil {
			// Metadata attaches to the most recent posting; metadata seen
			// before any posting belongs to the transaction and is not
			// needed for matching.
			if n := len(p.txnPostings); n > 0 {
				p.txnPostings[n-1].posting.Metadata[m[1]] = unquote(m[2])
			}
			return
		}
		if m := postingPattern.FindStringSubmatch(trimmed); m != nil {
			posting := Posting{Account: m[1], Metadata: map[string]string{}}
			if m[2] != "" {
				number, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
				if err == nil {
					posting.Amount = Amount{Number: number, Currency: m[3]}
				}
			}
			p.txnPostings = append(p.txnPostings, rawPosting{posting: posting, line: lineNo})
		}
	}
}

func (p *parser) consumeDirective(trimmed string, lineNo int) {
	m := directivePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return
	}
	date, err := time.Parse(DateLayout, m[1])
	if err != nil {
		return
	}

	switch m[2] {
	case "open":
		fields := strings.Fields(m[3])
		if len(fields) == 0 {
			return
		}
		p.open = &Account{Name: fields[0], Metadata: map[string]string{}}
	case "*", "!", "txn":
		txn := &Transaction{Date: date, Flag: m[2]}
		if nm := narrationPattern.FindStringSubmatch(m[3]); nm != nil {
			txn.Payee = nm[1]
			txn.Narration = nm[2]
		}
		p.txn = txn
	}
}

// flush finalizes the directive currently being assembled.
func (p *parser) flush() {
	if p.open != nil {
		p.accounts = append(p.accounts, *p.open)
		p.open = nil
	}
	if p.txn != nil {
		for _, rp := range p.txnPostings {
			p.postings = append(p.postings, viewsFromPosting(p.txn, rp.posting, p.file, rp.line)...)
		}
		p.txn = nil
		p.txnPostings = nil
	}
}

// viewsFromPosting projects a posting into zero or more PostingViews, one per
// source_desc* metadata field. Postings without an amount or without any
// source description cannot participate in matching and yield nothing.
func viewsFromPosting(txn *Transaction, posting Posting, file string, line int) []PostingView {
	if posting.Amount.Currency == "" {
		return nil
	}

	matchDate := txn.Date
	if raw, ok := posting.Metadata["date"]; ok {
		if d, err := time.Parse(DateLayout, raw); err == nil {
			matchDate = d
		}
	}

	var views []PostingView
	appendView := func(desc string) {
		views = append(views, PostingView{
			Account:    posting.Account,
			MatchDate:  matchDate,
			Amount:     posting.Amount,
			SourceDesc: desc,
			File:       file,
			Line:       line,
		})
	}

	if desc, ok := posting.Metadata["source_desc"]; ok {
		appendView(desc)
	}
	for i := 1; ; i++ {
		desc, ok := posting.Metadata["source_desc"+strconv.Itoa(i)]
		if !ok {
			break
		}
		appendView(desc)
	}

	return views
}

// stripComment removes a trailing ; comment, ignoring semicolons inside
// quoted strings.
func stripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

// unquote strips surrounding double quotes from a metadata value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err == nil {
			return unquoted
		}
		return s[1 : len(s)-1]
	}
	return s
}
