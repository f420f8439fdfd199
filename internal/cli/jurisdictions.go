// internal/cli/jurisdictions.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docket-watch/acquire/internal/router"
	"github.com/docket-watch/acquire/internal/ui"
)

// jurisdictionsCmd represents the jurisdictions command
var jurisdictionsCmd = &cobra.Command{
	Use:     "jurisdictions",
	Aliases: []string{"js"},
	Short:   "List supported jurisdictions and their readiness",
	Long: `Lists every registered jurisdiction with its protection level, the
strategy the current configuration resolves to, and whether that strategy can
run. A jurisdiction marked "missing config" needs a solver key, proxy
credentials, or a remote browser endpoint before lookups will succeed.`,
	RunE: runJurisdictions,
}

func init() {
	rootCmd.AddCommand(jurisdictionsCmd)
}

func runJurisdictions(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)

	fmt.Printf("\n%s%-6s %-42s %-10s %-26s%s\n", ui.ColorBold, "CODE", "AGENCY", "SHIELD", "STRATEGY", ui.ColorReset)

	ready := 0
	codes := a.Registry.Codes()
	for _, code := range codes {
		j, _ := a.Registry.Get(code)

		strategy, err := router.Resolve(j, a.Config)
		var status string
		if err != nil {
			status = ui.Error("missing config")
		} else {
			status = strategy.String()
			ready++
		}

		fmt.Printf("%-6s %-42s %-10s %s\n",
			strings.ToUpper(j.Code), truncate(j.Agency, 42), j.Protection.String(), status)
	}

	fmt.Printf("\n%s\n\n", ui.Info(fmt.Sprintf("%d of %d jurisdictions ready under current configuration", ready, len(codes))))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
