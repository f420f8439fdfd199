// internal/cli/batch.go
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/docket-watch/acquire/internal/acquire"
	"github.com/docket-watch/acquire/internal/output"
	"github.com/docket-watch/acquire/internal/ui"
	"github.com/docket-watch/acquire/pkg/models"
)

var (
	batchWorkers int
	batchOutput  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Acquire many dockets listed in a file",
	Long: `Reads docket references from a file, one per line, in the form

  <jurisdiction>,<docket-number>

Lines starting with # and blank lines are skipped. Acquisitions run
concurrently up to --workers; the browser context cap still applies on top,
so a high worker count cannot exhaust local Chrome instances.

Failed lookups are reported at the end and never abort the batch.`,
	Example: `  # Acquire a batch and save results as JSON
  docketwatch batch dockets.txt --output=results.json

  # Throttle to two concurrent lookups
  docketwatch batch dockets.txt --workers=2`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "Concurrent acquisitions")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "File path to save results (supports .json, .csv)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)

	requests, err := readBatchFile(args[0])
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no docket references found in %s", args[0])
	}

	run := acquire.NewRun(a.Engine, requests, batchWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		run.Cancel()
	}()

	bar := progressbar.NewOptions(len(requests),
		progressbar.OptionSetDescription("acquiring"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	run.Start(ctx)

	var records []*models.NormalizedRecord
	var failures []models.AcquireResult
	for result := range run.Results() {
		_ = bar.Add(1)
		if result.Err != nil {
			failures = append(failures, result)
			continue
		}
		records = append(records, result.Record)
	}
	_ = bar.Finish()

	found := 0
	for _, r := range records {
		if r.Found {
			found++
		}
	}
	fmt.Printf("\n%s %d acquired (%d found, %d not found), %d failed\n",
		ui.Success("✓"), len(records), found, len(records)-found, len(failures))

	for _, f := range failures {
		fmt.Printf("  %s %s/%s: %v\n", ui.Error("✗"), f.Request.Jurisdiction, f.Request.Identifier, f.Err)
	}

	if batchOutput != "" && len(records) > 0 {
		if err := saveBatch(records, batchOutput); err != nil {
			return err
		}
		fmt.Printf("%s Saved %d records to %s\n", ui.Success("✓"), len(records), batchOutput)
	}

	if len(failures) > 0 && len(records) == 0 {
		return fmt.Errorf("all %d acquisitions failed", len(failures))
	}
	return nil
}

func saveBatch(records []*models.NormalizedRecord, path string) error {
	if strings.HasSuffix(path, ".csv") {
		return output.SaveCSV(records, path)
	}
	return output.SaveJSON(records, path)
}

// readBatchFile parses "jurisdiction,identifier" lines. A bad line aborts
// the whole batch before any network traffic happens.
func readBatchFile(path string) ([]models.AcquireRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var requests []models.AcquireRequest
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("line %d: expected <jurisdiction>,<docket-number>, got %q", lineNo, line)
		}
		requests = append(requests, models.AcquireRequest{
			Jurisdiction: strings.ToLower(strings.TrimSpace(parts[0])),
			Identifier:   strings.TrimSpace(parts[1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return requests, nil
}
