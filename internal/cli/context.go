// Package cli provides the command-line interface for docketwatch.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docket-watch/acquire/internal/app"
)

// Global reference - temporary until full context passing is implemented
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetAppFromCmd retrieves the Application.
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}
