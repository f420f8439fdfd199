// internal/cli/get.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/docket-watch/acquire/internal/output"
	"github.com/docket-watch/acquire/internal/ui"
	"github.com/docket-watch/acquire/pkg/models"
)

var (
	getOutput string
	getRawErr bool
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <jurisdiction> <docket-number>",
	Short: "Look up one docket by jurisdiction code and docket number",
	Long: `Fetches the docket detail page for the given jurisdiction and docket
number, escalating through browser rendering and challenge solving as the
site requires, and prints the normalized record.

A docket that does not exist is not an error: the record is printed with
found=false and the command exits 0.`,
	Example: `  # Look up a Georgia PSC docket
  docketwatch get ga 44280

  # Save the record as JSON
  docketwatch get az E-01345A-22-0144 --output=record.json

  # Verbose logging for a site behind Turnstile
  docketwatch get nm 22-00058-UT -v`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "File path to save the record (supports .json, .csv)")
	getCmd.Flags().BoolVar(&getRawErr, "exit-nonzero-on-miss", false, "Exit 1 when the docket is not found")
}

func runGet(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	jurisdiction := strings.ToLower(args[0])
	identifier := args[1]

	record, err := a.Engine.Acquire(context.Background(), jurisdiction, identifier)
	if err != nil {
		return formatAcquireError(err, record)
	}

	if getOutput != "" {
		return saveRecord(record, getOutput)
	}

	printRecord(record)
	if !record.Found && getRawErr {
		os.Exit(1)
	}
	return nil
}

// formatAcquireError turns the typed error taxonomy into operator-readable
// output. The raw error chain still goes to the debug log; the console line
// says what happened and what to change.
func formatAcquireError(err error, record *models.NormalizedRecord) error {
	var e *errdefs.Error
	if !errors.As(err, &e) {
		return err
	}

	switch e.Kind {
	case errdefs.KindConfigurationMissing:
		return fmt.Errorf("%s\n%s", e.Message, ui.Info("set the missing credential via flag, environment variable, or `docketwatch secret set`"))
	case errdefs.KindChallengeUnsolved:
		return fmt.Errorf("challenge could not be solved: %s (source: %s)", e.Message, record.SourceURL)
	case errdefs.KindTimeout:
		return fmt.Errorf("timed out: %s (source: %s)", e.Message, record.SourceURL)
	case errdefs.KindUpstream:
		if e.Status > 0 {
			return fmt.Errorf("upstream returned HTTP %d (source: %s)", e.Status, record.SourceURL)
		}
		return fmt.Errorf("upstream unreachable: %s", e.Message)
	default:
		return err
	}
}

func saveRecord(record *models.NormalizedRecord, path string) error {
	records := []*models.NormalizedRecord{record}
	var err error
	switch {
	case strings.HasSuffix(path, ".csv"):
		err = output.SaveCSV(records, path)
	default:
		err = output.SaveJSON(records, path)
	}
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	fmt.Printf("%s Saved to %s\n", ui.Success("✓"), path)
	return nil
}

func printRecord(record *models.NormalizedRecord) {
	if !record.Found {
		fmt.Printf("\n%s docket %s/%s not found upstream\n", ui.Info("○"), record.Jurisdiction, record.Identifier)
		fmt.Printf("  Source: %s\n\n", record.SourceURL)
		return
	}

	fmt.Printf("\n%s %s / %s\n\n", ui.Success("✓"), strings.ToUpper(record.Jurisdiction), record.Identifier)
	printField("Title", record.Title)
	printField("Organization", record.OrganizationName)
	printField("Filed", record.FiledDate)
	printField("Status", record.Status)
	printField("Category", record.Category)
	printField("Source", record.SourceURL)
	for k, v := range record.Extra {
		printField(k, v)
	}
	fmt.Printf("\n%s\n\n", ui.Info(fmt.Sprintf("fetched in %dms", record.ResponseTimeMs)))
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %s%-14s%s %s\n", ui.ColorBold, label+":", ui.ColorReset, value)
}
