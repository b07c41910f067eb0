// Package pathutil provides centralized path management for the ledger tree,
// the run-history database, and pending draft files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResolver manages paths for ledger files, the history database, and
// pending drafts awaiting review.
type PathResolver struct {
	ledgerRoot   string
	databasePath string
	pendingDir   string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// LedgerRoot is the root directory holding all Beancount files.
	LedgerRoot string
	// DatabasePath is the path to the SQLite database file for run history.
	DatabasePath string
	// PendingDir is the directory where draft entries are written for review.
	PendingDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {LedgerRoot}/.beanrecon/history.db.
// If PendingDir is empty, it defaults to {LedgerRoot}/pending.
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.LedgerRoot, ".beanrecon", "history.db")
	}

	pendingDir := config.PendingDir
	if pendingDir == "" {
		pendingDir = filepath.Join(config.LedgerRoot, "pending")
	}

	return &PathResolver{
		ledgerRoot:   config.LedgerRoot,
		databasePath: dbPath,
		pendingDir:   pendingDir,
	}
}

// GetLedgerRoot returns the ledger root directory.
func (p *PathResolver) GetLedgerRoot() string {
	return p.ledgerRoot
}

// GetDatabasePath returns the history database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetPendingDir returns the pending drafts directory.
func (p *PathResolver) GetPendingDir() string {
	return p.pendingDir
}

// GetPendingFilePath returns the drafts file for a given date.
// Example: {LedgerRoot}/pending/2026-08-25-pending.beancount
func (p *PathResolver) GetPendingFilePath(date string) string {
	return filepath.Join(p.pendingDir, fmt.Sprintf("%s-pending.beancount", date))
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// IsDir checks if a path is a directory.
func (p *PathResolver) IsDir(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
