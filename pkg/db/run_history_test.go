package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRecordAndGetRecentRuns(t *testing.T) {
	history := NewRunHistory(openTestDB(t))

	runs := []RunRecord{
		{SourceFile: "a.csv", RecordCount: 10, MatchedCount: 8, PendingCount: 2},
		{SourceFile: "b.csv", RecordCount: 5, MatchedCount: 5, InvalidCount: 1, WarningCount: 2},
	}
	for _, run := range runs {
		if err := history.RecordRun(run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	recent, err := history.GetRecentRuns(10)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d runs, want 2", len(recent))
	}
	// Newest first.
	if recent[0].SourceFile != "b.csv" {
		t.Errorf("recent[0].SourceFile = %q, want b.csv", recent[0].SourceFile)
	}
	if recent[0].InvalidCount != 1 || recent[0].WarningCount != 2 {
		t.Errorf("recent[0] counts = %+v", recent[0])
	}
	if recent[1].RecordCount != 10 || recent[1].MatchedCount != 8 {
		t.Errorf("recent[1] counts = %+v", recent[1])
	}
}

func TestGetRecentRunsLimit(t *testing.T) {
	history := NewRunHistory(openTestDB(t))

	for i := 0; i < 3; i++ {
		if err := history.RecordRun(RunRecord{SourceFile: "export.csv"}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := history.GetRecentRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d runs, want 2", len(recent))
	}
}

func TestGetStats(t *testing.T) {
	history := NewRunHistory(openTestDB(t))

	stats, err := history.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalRuns != 0 || stats.LastRun.Valid {
		t.Errorf("empty db stats = %+v", stats)
	}

	if err := history.RecordRun(RunRecord{SourceFile: "a.csv", PendingCount: 3, InvalidCount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := history.RecordRun(RunRecord{SourceFile: "b.csv", PendingCount: 2, WarningCount: 4}); err != nil {
		t.Fatal(err)
	}

	stats, err = history.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRuns != 2 {
		t.Errorf("TotalRuns = %d, want 2", stats.TotalRuns)
	}
	if stats.TotalPending != 5 {
		t.Errorf("TotalPending = %d, want 5", stats.TotalPending)
	}
	if stats.TotalInvalid != 1 {
		t.Errorf("TotalInvalid = %d, want 1", stats.TotalInvalid)
	}
	if stats.TotalWarning != 4 {
		t.Errorf("TotalWarning = %d, want 4", stats.TotalWarning)
	}
	if !stats.LastRun.Valid {
		t.Error("LastRun should be set after recording runs")
	}
}

func TestMetadata(t *testing.T) {
	history := NewRunHistory(openTestDB(t))

	value, err := history.GetMetadata("last_export")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if value != "" {
		t.Errorf("missing key should yield empty value, got %q", value)
	}

	if err := history.SetMetadata("last_export", "a.csv"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := history.SetMetadata("last_export", "b.csv"); err != nil {
		t.Fatalf("SetMetadata upsert: %v", err)
	}

	value, err = history.GetMetadata("last_export")
	if err != nil {
		t.Fatal(err)
	}
	if value != "b.csv" {
		t.Errorf("value = %q, want b.csv", value)
	}
}
