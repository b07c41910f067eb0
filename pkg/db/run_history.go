package db

import (
	"database/sql"
	"fmt"
	"time"
)

// RunRecord represents one reconciliation run.
type RunRecord struct {
	ID           int64
	SourceFile   string
	RecordCount  int
	MatchedCount int
	PendingCount int
	InvalidCount int
	BalanceCount int
	WarningCount int
	RanAt        time.Time
}

// RunHistory manages run history operations.
type RunHistory struct {
	conn *Connection
}

// NewRunHistory creates a new RunHistory instance.
func NewRunHistory(conn *Connection) *RunHistory {
	return &RunHistory{conn: conn}
}

// RecordRun records a completed reconciliation run.
func (h *RunHistory) RecordRun(record RunRecord) error {
	query := `
		INSERT INTO import_runs
			(source_file, record_count, matched_count, pending_count, invalid_count, balance_count, warning_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.conn.Exec(query,
		record.SourceFile,
		record.RecordCount,
		record.MatchedCount,
		record.PendingCount,
		record.InvalidCount,
		record.BalanceCount,
		record.WarningCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// GetRecentRuns retrieves the most recent runs, newest first.
func (h *RunHistory) GetRecentRuns(limit int) ([]RunRecord, error) {
	query := `
		SELECT id, source_file, record_count, matched_count, pending_count,
		       invalid_count, balance_count, warning_count, ran_at
		FROM import_runs
		ORDER BY ran_at DESC, id DESC
		LIMIT ?
	`

	rows, err := h.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		if err := rows.Scan(
			&record.ID,
			&record.SourceFile,
			&record.RecordCount,
			&record.MatchedCount,
			&record.PendingCount,
			&record.InvalidCount,
			&record.BalanceCount,
			&record.WarningCount,
			&record.RanAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// Stats represents aggregate run statistics.
type Stats struct {
	TotalRuns    int
	TotalPending int
	TotalInvalid int
	TotalWarning int
	LastRun      sql.NullString
}

// GetStats retrieves aggregate statistics over all recorded runs.
func (h *RunHistory) GetStats() (*Stats, error) {
	var stats Stats

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(pending_count), 0),
		       COALESCE(SUM(invalid_count), 0),
		       COALESCE(SUM(warning_count), 0),
		       MAX(ran_at)
		FROM import_runs
	`
	err := h.conn.QueryRow(query).Scan(
		&stats.TotalRuns,
		&stats.TotalPending,
		&stats.TotalInvalid,
		&stats.TotalWarning,
		&stats.LastRun,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *RunHistory) GetMetadata(key string) (string, error) {
	query := `SELECT value FROM run_metadata WHERE key = ?`

	var value string
	err := h.conn.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *RunHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO run_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := h.conn.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
