package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a scan against the candidate engine",
	Long: `Triggers a synchronous scan of a universe with a strategy template.

The engine refreshes market history, evaluates the template's entry
rules per ticker and writes candidates. Per-ticker failures are
reported as counters, not as a failed scan.

Example:
  go run ./cmd/chronos scan --universe 1 --template 3`,
	RunE: runScanCommand,
}

var (
	scanUniverseID int64
	scanTemplateID int64
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().Int64Var(&scanUniverseID, "universe", 0, "universe ID to scan")
	scanCmd.Flags().Int64Var(&scanTemplateID, "template", 0, "strategy template ID")
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Printf("Scanning universe %d with template %d...\n", scanUniverseID, scanTemplateID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	outcome, err := rt.orchestrator.Run(ctx, scanUniverseID, scanTemplateID)
	if err != nil {
		return fmt.Errorf("run scan: %w", err)
	}
	if outcome == nil {
		fmt.Println("⚠️  Nothing to scan: both --universe and --template must be positive")
		return nil
	}

	result := outcome.Result
	fmt.Printf("\n✅ Scan completed in %.2fs\n", time.Since(start).Seconds())
	fmt.Printf("  Tickers processed  : %d\n", result.TickersProcessed)
	fmt.Printf("  OHLCV rows written : %d\n", result.OHLCVRowsWritten)
	fmt.Printf("  Candidates created : %d\n", result.CandidatesCreated)
	fmt.Printf("  Errors             : %d\n", result.ErrorCount)
	return nil
}
