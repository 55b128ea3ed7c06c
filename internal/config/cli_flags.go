package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored console output")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (optional)")
	cmd.PersistentFlags().String("secret-backend", "", "Credential backend: keyring, file or aws")
	cmd.PersistentFlags().String("service", "", "Secret name the credential is stored under")
}

// RegisterBrowserFlags registers flags of commands that drive a live browser
func RegisterBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.Flags().String("timeout", "30s", "Set hard timeout for each browser action")
	cmd.Flags().String("user-agent", "", "Custom user agent string")
	cmd.Flags().String("chrome-path", "", "Path to the Chrome executable")
	cmd.Flags().Bool("headless", false, "Run Chrome without a window")
	cmd.Flags().Uint64("seed", 0, "Seed for delays and ordering (0 = time based)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().StringSlice("surface", nil, "Only run these surfaces (repeatable)")
}
