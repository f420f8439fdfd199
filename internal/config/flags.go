package config

import "github.com/spf13/cobra"

// RegisterFlags attaches the shared persistent flags to the root command.
// Flag values override environment variables, which override defaults.
func RegisterFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()

	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Bool("json", false, "Emit logs as JSON")
	pf.String("timeout", DefaultHTTPTimeout.String(), "HTTP request timeout (e.g. 30s)")
	pf.String("user-agent", "", "Override the User-Agent header")
	pf.String("solver-key", "", "Challenge solver API key")
	pf.String("remote-cdp", "", "Remote Chrome DevTools endpoint (ws:// or http://)")
	pf.String("snapshot-dir", "", "Directory to archive raw page snapshots (empty disables)")
	pf.Bool("headful", false, "Run local browsers with a visible window")
	pf.Bool("no-stealth", false, "Disable the stealth page script")
}
