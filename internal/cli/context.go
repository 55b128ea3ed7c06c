// Package cli provides the command-line interface for the campaigner application.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/campaigner/internal/app"
)

// ctxKey is used for storing app context in cobra commands
type ctxKey string

const appKey ctxKey = "app"

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetAppFromCmd retrieves the Application stored on cmd, or nil
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey).(*app.Application)
	return a
}

// colorOutput reports whether cmd's stdout should get ANSI colors
func colorOutput(cmd *cobra.Command, a *app.Application) bool {
	if a.Config.NoColor {
		return false
	}
	return isTerminal(cmd.OutOrStdout())
}
