// internal/cli/surfaces.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/campaigner/internal/ui"
)

var surfacesCmd = &cobra.Command{
	Use:   "surfaces",
	Short: "List configured surfaces",
	Args:  cobra.NoArgs,
	RunE:  runSurfaces,
}

func init() {
	rootCmd.AddCommand(surfacesCmd)
}

func runSurfaces(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	out := cmd.OutOrStdout()
	painter := ui.Painter{Color: colorOutput(cmd, a)}
	for _, s := range a.Config.Surfaces {
		url := s.URL
		if url == "" {
			url = painter.Paint(ui.Info, "(not configured)")
		}

		chain := make([]string, len(s.EntryChain))
		for i, l := range s.EntryChain {
			chain[i] = l.String()
		}

		fmt.Fprintf(out, "%s %s\n", painter.Tag(s.Name), s.Extract.Kind)
		fmt.Fprintf(out, "  url:   %s\n", url)
		fmt.Fprintf(out, "  root:  %s\n", s.Extract.Root)
		fmt.Fprintf(out, "  entry: %s\n", strings.Join(chain, " -> "))
		if s.ClosesPopups {
			fmt.Fprintln(out, painter.Paint(ui.Dim, "  closes popups after each click"))
		}
		fmt.Fprintln(out)
	}
	return nil
}
