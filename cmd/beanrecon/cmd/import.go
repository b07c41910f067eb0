package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pigeonworks-llc/beanrecon/pkg/config"
	"github.com/pigeonworks-llc/beanrecon/pkg/db"
	"github.com/pigeonworks-llc/beanrecon/pkg/ledger"
	"github.com/pigeonworks-llc/beanrecon/pkg/pathutil"
	"github.com/pigeonworks-llc/beanrecon/pkg/reconcile"
	"github.com/pigeonworks-llc/beanrecon/pkg/source"
)

var (
	exportFile   string
	balancesPath string
	dryRun       bool
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Reconcile an export file against the ledger",
	Long: `Reconcile a CSV transaction export against the recorded ledger.

This command:
1. Loads the export file (and balance snapshots, if given)
2. Maps external account ids to ledger accounts via account metadata
3. Matches records against recorded postings by natural key
4. Writes pending drafts for review and reports invalid postings
5. Records the run in SQLite history

Re-running against an unchanged ledger and export is a no-op: already
recorded rows match and produce nothing.

Example:
  beanrecon import --file data/export.csv
  beanrecon import --file data/export.csv --balances data/balances --dry-run`,
	Run: runImport,
}

func init() {
	// Flags
	importCmd.Flags().StringVar(&exportFile, "file", "", "Transactions export CSV (required)")
	importCmd.Flags().StringVar(&balancesPath, "balances", "", "Balance snapshots CSV file or directory (optional)")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print drafts without writing files or history")

	importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) {
	slog.Info("Starting import", "file", exportFile, "balances", balancesPath, "dry_run", dryRun)

	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		"ledger.root",
		"import.currency",
		"import.placeholderAccount",
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		LedgerRoot:   cfg.Ledger.Root,
		DatabasePath: cfg.Ledger.DBPath,
		PendingDir:   cfg.Ledger.PendingDir,
	})

	// Load source profile
	profile, err := source.LoadProfile(cfg.Import.ProfilePath)
	exitOnError(err, "failed to load source profile")

	// Load the export
	slog.Info("Loading export", "file", exportFile)
	records, err := source.LoadTransactions(exportFile, profile, cfg.Import.Currency)
	exitOnError(err, "failed to load export")
	slog.Info("Loaded records", "count", len(records))

	var balances []source.BalanceRecord
	if balancesPath != "" {
		slog.Info("Loading balance snapshots", "path", balancesPath)
		balances, err = source.LoadBalances(balancesPath, profile)
		exitOnError(err, "failed to load balance snapshots")
		slog.Info("Loaded balance snapshots", "count", len(balances))
	}

	// Load the ledger
	ledgerRepo := ledger.NewFileSystemRepository(pathResolver)
	slog.Info("Loading ledger", "root", cfg.Ledger.Root)
	journal, err := ledgerRepo.Load()
	exitOnError(err, "failed to load ledger")
	slog.Info("Loaded ledger", "accounts", len(journal.Accounts), "postings", len(journal.Postings))

	// Build the account mapping
	mapping, err := reconcile.BuildAccountMapping(journal.Accounts, cfg.Import.AccountMetaKey)
	exitOnError(err, "failed to build account mapping")
	slog.Debug("Built account mapping", "accounts", mapping.Len())

	// Reconcile
	result := reconcile.Reconcile(records, balances, journal.Postings, mapping)
	slog.Info("Reconciled",
		"matched", result.MatchedCount,
		"pending", len(result.PendingTransactions),
		"pending_balances", len(result.PendingBalances),
		"invalid", len(result.InvalidPostings),
		"warnings", len(result.MissingAccounts),
	)

	for _, warning := range result.Warnings() {
		fmt.Printf("WARNING: %s\n", warning)
	}

	for _, posting := range result.InvalidPostings {
		fmt.Printf("INVALID: %s:%d %s %s %q recorded but absent from the export\n",
			posting.File, posting.Line, posting.Account, posting.Amount, posting.SourceDesc)
	}

	proposals := result.Proposals(cfg.Import.PlaceholderAccount)
	if len(proposals) == 0 {
		fmt.Println("Nothing pending: ledger and export agree")
	}

	if dryRun {
		for _, proposal := range proposals {
			fmt.Printf("; from %s line %d\n", proposal.File, proposal.Line)
			fmt.Println(proposal.Render())
		}
		slog.Info("Dry run finished", "pending", len(proposals))
		return
	}

	// Write drafts to the pending file
	today := time.Now().Format(ledger.DateLayout)
	var pendingFile string
	for _, proposal := range proposals {
		text := fmt.Sprintf("; from %s line %d\n%s", proposal.File, proposal.Line, proposal.Render())
		pendingFile, err = ledgerRepo.AppendDraft(today, text)
		exitOnError(err, "failed to write pending draft")
	}
	if pendingFile != "" {
		slog.Info("Wrote pending drafts", "path", pendingFile, "count", len(proposals))
		fmt.Printf("Wrote %d pending draft(s) to %s\n", len(proposals), pendingFile)
	}

	// Record the run
	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewRunHistory(conn)
	if err := history.RecordRun(db.RunRecord{
		SourceFile:   exportFile,
		RecordCount:  len(records),
		MatchedCount: result.MatchedCount,
		PendingCount: len(result.PendingTransactions),
		InvalidCount: len(result.InvalidPostings),
		BalanceCount: len(result.PendingBalances),
		WarningCount: len(result.MissingAccounts),
	}); err != nil {
		slog.Error("Failed to record run", "error", err)
	}

	slog.Info("Import completed",
		"pending", len(result.PendingTransactions),
		"invalid", len(result.InvalidPostings),
	)
}
