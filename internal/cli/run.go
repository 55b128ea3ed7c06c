// internal/cli/run.go
package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/campaign"
	"github.com/law-makers/campaigner/internal/config"
	"github.com/law-makers/campaigner/internal/runctx"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log in and enter every open campaign",
	Long: `Logs in with the stored credential, then visits each configured surface in a
random order, enters every campaign that still needs an entry and clicks every
point banner not yet clicked.

A failure on one campaign or surface never stops the run; only a failed login does.`,
	Example: `  # Full run with a visible browser
  campaigner run

  # Only the click-point banners, headless, reproducible order
  campaigner run --surface click-point --headless --seed 42

  # Export metrics for node_exporter's textfile collector
  campaigner run --metrics-file /var/lib/node_exporter/campaigner.prom`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	config.RegisterBrowserFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config

	ctx := runctx.WithRunContext(cmd.Context(), *a.Logger)
	logger := zerolog.Ctx(ctx)

	store, err := a.CredentialStore(ctx)
	if err != nil {
		return err
	}
	cred, err := store.Lookup(ctx, cfg.SecretService)
	if errors.Is(err, auth.ErrCredentialNotFound) {
		return fmt.Errorf("%w (store one with: campaigner creds set)", err)
	}
	if err != nil {
		return err
	}

	session, err := a.EnsureBrowser(ctx)
	if err != nil {
		return err
	}

	reporters := campaign.MultiReporter{a.Metrics}
	if cfg.JSONLog {
		reporters = append(reporters, campaign.LogReporter{Logger: *logger})
	} else {
		reporters = append(reporters, campaign.NewConsoleReporter(cmd.OutOrStdout(), colorOutput(cmd, a)))
	}

	orchestrator, err := a.NewOrchestrator(session, cred, reporters)
	if err != nil {
		return err
	}

	logger.Info().Int("surfaces", len(orchestrator.Steps)).Uint64("seed", cfg.Seed).Msg("Run started")
	runErr := orchestrator.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := a.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("Failed to write metrics")
		}
	}

	if runErr != nil {
		return runctx.NewRunError(ctx, runErr)
	}

	logger.Info().Dur("elapsed", a.Uptime()).Msg("Run finished")
	return nil
}
