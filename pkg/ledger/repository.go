package ledger

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pigeonworks-llc/beanrecon/pkg/pathutil"
)

// Journal is the read-only snapshot of the ledger that reconciliation works
// against: every opened account with its metadata, and every matchable
// posting projected to a PostingView.
type Journal struct {
	Accounts []Account
	Postings []PostingView
}

// Repository defines the interface for ledger access.
type Repository interface {
	// Load reads the full ledger snapshot
	Load() (*Journal, error)

	// AppendDraft appends rendered draft entries to the pending file for a date
	AppendDraft(date, text string) (string, error)
}

// FileSystemRepository is a file system implementation of Repository. It
// scans the ledger root recursively for .beancount files.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// Load parses every .beancount file under the ledger root and aggregates the
// results. Files are visited in lexical path order, so repeated loads of an
// unchanged tree produce identical snapshots. The pending directory is
// excluded: drafts awaiting review are not part of the recorded ledger.
func (r *FileSystemRepository) Load() (*Journal, error) {
	root := r.pathResolver.GetLedgerRoot()
	pendingDir := r.pathResolver.GetPendingDir()

	journal := &Journal{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == pendingDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".beancount") {
			return nil
		}

		accounts, postings, err := parseFile(path)
		if err != nil {
			return err
		}
		journal.Accounts = append(journal.Accounts, accounts...)
		journal.Postings = append(journal.Postings, postings...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger from %s: %w", root, err)
	}

	return journal, nil
}

// AppendDraft appends rendered draft entries to the pending file for the
// given date (YYYY-MM-DD), creating the file with a header if needed.
// It returns the path of the file written.
func (r *FileSystemRepository) AppendDraft(date, text string) (string, error) {
	filePath := r.pathResolver.GetPendingFilePath(date)

	if !r.pathResolver.FileExists(filePath) {
		if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
			return "", fmt.Errorf("failed to ensure pending directory: %w", err)
		}
		header := fmt.Sprintf("; Pending entries generated %s. Review before merging into the ledger.\n\n", date)
		if err := os.WriteFile(filePath, []byte(header), 0644); err != nil {
			return "", fmt.Errorf("failed to create pending file: %w", err)
		}
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open pending file for appending: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := f.WriteString(text + "\n"); err != nil {
		return "", fmt.Errorf("failed to write to pending file: %w", err)
	}

	return filePath, nil
}
