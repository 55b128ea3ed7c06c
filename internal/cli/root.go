// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/law-makers/campaigner/internal/app"
	"github.com/law-makers/campaigner/internal/config"
	"github.com/law-makers/campaigner/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "campaigner",
	Short: "Enter point campaigns and click point banners automatically",
	Long: `Campaigner logs into the card member site with a stored credential, finds the
campaigns and point banners that still need an entry, and enters them one by
one at a human pace.

Surfaces, selectors and delays are data: override them with --config.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Cancelling ctx interrupts a running command.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		p := ui.Painter{Color: isTerminal(os.Stderr)}
		fmt.Fprintf(os.Stderr, "%s %v\n", p.Paint(ui.Error, "Error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		appCtx, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		// Store app in the current command's context for commands to access
		SetApp(cmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetAppFromCmd(cmd)
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.Timeout)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Campaigner")
	rootCmd.Flags().Bool("version", false, "Version for Campaigner")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd, true)
	})
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		renderHelp(cmd.ErrOrStderr(), cmd, false)
		return nil
	})
}

// renderHelp prints colorized help; usage output (full=false) omits the
// description, examples and inherited flags
func renderHelp(w io.Writer, cmd *cobra.Command, full bool) {
	p := ui.Painter{Color: isTerminal(w)}
	heading := func(title string) {
		fmt.Fprintf(w, "\n%s\n", p.Paint(ui.Bold, title))
	}

	if full {
		fmt.Fprintf(w, "\n%s\n", p.Paint(ui.Bold, strings.ToUpper(cmd.Name())))
		if cmd.Short != "" {
			fmt.Fprintln(w, cmd.Short)
		}
		if cmd.Long != "" && cmd.Long != cmd.Short {
			fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(cmd.Long))
		}
	}

	heading("Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n", cmd.CommandPath(), p.Paint(ui.Warning, "<command>"), p.Paint(ui.Dim, "[flags]"))
	}

	if full && cmd.HasExample() {
		heading("Examples")
		lastWasCommand := false
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
			case strings.HasPrefix(trimmed, "#"):
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s\n", p.Paint(ui.Dim, trimmed))
				lastWasCommand = false
			default:
				fmt.Fprintf(w, "  %s\n", p.Paint(ui.Success, "$ "+trimmed))
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		heading("Commands")
		var names []string
		shorts := map[string]string{}
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				names = append(names, c.Name())
				shorts[c.Name()] = c.Short
			}
		}
		width := 0
		for _, n := range names {
			width = max(width, len(n))
		}
		for _, n := range names {
			fmt.Fprintf(w, "  %s%s  %s\n", n, strings.Repeat(" ", width-len(n)), p.Paint(ui.Dim, shorts[n]))
		}
	}

	if cmd.HasAvailableLocalFlags() {
		heading("Flags")
		printFlags(w, p, cmd.LocalFlags().FlagUsages())
	}
	if full && cmd.HasAvailableInheritedFlags() {
		heading("Global Flags")
		printFlags(w, p, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", p.Paint(ui.Dim, fmt.Sprintf("Use \"%s <command> --help\" for more information about a command.", cmd.CommandPath())))
	}
	fmt.Fprintln(w)
}

// printFlags aligns pflag's usage lines into two colored columns
func printFlags(w io.Writer, p ui.Painter, flagUsages string) {
	const minWidth = 28

	type row struct{ flag, desc string }
	var rows []row
	width := minWidth
	for _, line := range strings.Split(flagUsages, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			// continuation of the previous description
			if len(rows) > 0 {
				rows[len(rows)-1].desc += "\n" + trimmed
			}
			continue
		}
		flag, desc, _ := strings.Cut(trimmed, "  ")
		rows = append(rows, row{flag: strings.TrimSpace(flag), desc: strings.TrimSpace(desc)})
		width = max(width, len(rows[len(rows)-1].flag))
	}

	indent := strings.Repeat(" ", width+4)
	for _, r := range rows {
		desc := strings.ReplaceAll(r.desc, "\n", "\n"+indent)
		fmt.Fprintf(w, "  %s%s  %s\n", p.Paint(ui.Success, r.flag), strings.Repeat(" ", width-len(r.flag)), p.Paint(ui.Dim, desc))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
