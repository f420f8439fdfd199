// internal/cli/root.go
package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/docket-watch/acquire/internal/app"
	"github.com/docket-watch/acquire/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "docketwatch",
	Short:   "Acquire docket metadata from state regulatory agency sites",
	Long:    `Docketwatch looks up regulatory filings by docket number across state public utility commissions, escalating from plain HTTP to headless browsers and challenge solving as each site requires.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and runs it.
// Called by main.main(); application initialization happens lazily in
// PersistentPreRunE so -h/--help never starts the app.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Shutdown error")
		}
		SetApp(cmd, nil)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
