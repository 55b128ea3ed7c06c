// internal/cli/inspect.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
	"github.com/law-makers/campaigner/internal/ui"
)

var inspectURL string

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <surface> <file.html>",
	Short: "Show what a saved page would produce, without clicking",
	Long: `Parses a page saved from the browser with the given surface's extractor and
prints every record with its verdict. Nothing is clicked and no network is used.

Useful after a site redesign to check the configured selectors.`,
	Example: `  # Check the campaign list selectors
  campaigner inspect card ~/Downloads/campaign.html

  # Relative links are resolved against --url
  campaigner inspect general saved.html --url https://example.com/campaigns/`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectURL, "url", "", "URL the page was saved from (default: the surface URL)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	name, path := args[0], args[1]

	sc, ok := a.Config.FindSurface(name)
	if !ok {
		return fmt.Errorf("unknown surface %q", name)
	}
	surface, err := sc.Surface()
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	pageURL := inspectURL
	if pageURL == "" {
		pageURL = surface.URL
	}
	if pageURL == "" {
		abs, _ := filepath.Abs(path)
		pageURL = "file://" + abs
	}

	page := browser.NewSnapshot()
	page.AddPage(pageURL, string(content))
	if err := page.Navigate(cmd.Context(), pageURL); err != nil {
		return err
	}

	records := surface.Extractor.Extract(cmd.Context(), page)
	classifier := a.Config.Classifier()
	console := campaign.NewConsoleReporter(cmd.OutOrStdout(), colorOutput(cmd, a))

	attemptable := 0
	for _, r := range records {
		v := classifier.Classify(r.Signal)
		console.Record(surface.Name, r, v)
		if v.Attemptable() {
			attemptable++
		}
	}

	summary := fmt.Sprintf("%d records, %d would be attempted", len(records), attemptable)
	fmt.Fprintln(cmd.OutOrStdout(), console.Paint(ui.Bold, summary))
	return nil
}
