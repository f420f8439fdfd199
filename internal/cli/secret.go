// internal/cli/secret.go
package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docket-watch/acquire/internal/config"
	"github.com/docket-watch/acquire/internal/ui"
)

// secretCmd groups keyring management subcommands
var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials in the OS keyring",
	Long: `Stores solver and proxy credentials in the operating system keyring so
they never appear in shell history or process listings. Stored secrets are
used automatically when the matching flag and environment variable are unset.`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret (prompts for the value)",
	Example: `  # Store the challenge solver API key
  docketwatch secret set solver-api-key

  # Store the residential proxy password
  docketwatch secret set proxy-password`,
	Args: cobra.ExactArgs(1),
	RunE: runSecretSet,
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		if err := config.DeleteSecret(name); err != nil {
			return fmt.Errorf("delete secret %q: %w", name, err)
		}
		fmt.Printf("%s Removed %s from keyring\n", ui.Success("✓"), name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretDeleteCmd)

	// Secret management must not require a working acquisition stack
	secretCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error { return nil }
	secretCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(args[0])

	valid := false
	for _, n := range config.SecretNames() {
		if n == name {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown secret %q (valid: %s)", name, strings.Join(config.SecretNames(), ", "))
	}

	fmt.Printf("Value for %s: ", name)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read secret value: %w", err)
	}
	if len(value) == 0 {
		return fmt.Errorf("empty value, nothing stored")
	}

	if err := config.StoreSecret(name, string(value)); err != nil {
		return fmt.Errorf("store secret %q: %w", name, err)
	}
	fmt.Printf("%s Stored %s in keyring\n", ui.Success("✓"), name)
	return nil
}
