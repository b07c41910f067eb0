package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pigeonworks-llc/beanrecon/pkg/config"
	"github.com/pigeonworks-llc/beanrecon/pkg/db"
	"github.com/pigeonworks-llc/beanrecon/pkg/pathutil"
)

var statsRecent int

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display reconciliation run statistics",
	Long: `Display statistics about past reconciliation runs.

Shows:
- Total number of runs
- Totals of pending, invalid, and warning classifications
- Last run timestamp
- The most recent runs

Example:
  beanrecon stats`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 5, "Number of recent runs to list")
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate("ledger.root"); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
		PendingDir:   cfg.Ledger.PendingDir,
	})

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewRunHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Reconciliation Statistics ===")
	fmt.Printf("Total runs:            %d\n", stats.TotalRuns)
	fmt.Printf("Total pending drafts:  %d\n", stats.TotalPending)
	fmt.Printf("Total invalid flagged: %d\n", stats.TotalInvalid)
	fmt.Printf("Total warnings:        %d\n", stats.TotalWarning)

	if stats.LastRun.Valid {
		fmt.Printf("Last run:              %s\n", stats.LastRun.String)
	} else {
		fmt.Printf("Last run:              (never)\n")
	}

	if statsRecent > 0 {
		runs, err := history.GetRecentRuns(statsRecent)
		exitOnError(err, "failed to get recent runs")

		if len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, run := range runs {
				fmt.Printf("  %s  %s  records=%d matched=%d pending=%d invalid=%d warnings=%d\n",
					run.RanAt.Format("2006-01-02 15:04:05"),
					run.SourceFile,
					run.RecordCount,
					run.MatchedCount,
					run.PendingCount,
					run.InvalidCount,
					run.WarningCount,
				)
			}
		}
	}

	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
