// Package db provides SQLite storage for reconciliation run history.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Run history table
-- One row per reconciliation run against an export file
CREATE TABLE IF NOT EXISTS import_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_file TEXT NOT NULL,         -- Path to the export file
    record_count INTEGER NOT NULL,     -- Loaded transaction records
    matched_count INTEGER NOT NULL,    -- Records consumed by existing postings
    pending_count INTEGER NOT NULL,    -- Records proposed as new drafts
    invalid_count INTEGER NOT NULL,    -- Ledger postings no longer corroborated
    balance_count INTEGER NOT NULL,    -- Balance assertions proposed
    warning_count INTEGER NOT NULL,    -- Unmapped external account ids
    ran_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_import_runs_file
    ON import_runs(source_file);

CREATE INDEX IF NOT EXISTS idx_import_runs_ran_at
    ON import_runs(ran_at);

-- Run metadata table
-- Stores key-value metadata about reconciliation runs
CREATE TABLE IF NOT EXISTS run_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
