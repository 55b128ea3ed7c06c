// internal/cli/creds.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/ui"
)

var credsUsername string

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage the stored login credential",
	Long: `Stores, checks and removes the credential used to log in.

The credential lives in the OS keyring, falling back to ~/.campaigner/credentials
when no keyring is available. With --secret-backend aws it is read from AWS
Secrets Manager instead; that backend is read-only here.`,
}

var credsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a credential (password is prompted for)",
	Example: `  campaigner creds set --username me@example.com
  campaigner creds set --service rakuten-family`,
	Args: cobra.NoArgs,
	RunE: runCredsSet,
}

var credsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a credential is stored",
	Args:  cobra.NoArgs,
	RunE:  runCredsCheck,
}

var credsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runCredsDelete,
}

func init() {
	rootCmd.AddCommand(credsCmd)
	credsCmd.AddCommand(credsSetCmd, credsCheckCmd, credsDeleteCmd)
	credsSetCmd.Flags().StringVarP(&credsUsername, "username", "u", "", "login user name (prompted for if empty)")
}

func runCredsSet(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	store, err := a.WritableCredentialStore()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.ErrOrStderr()

	username := strings.TrimSpace(credsUsername)
	if username == "" {
		fmt.Fprint(out, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := readPassword(cmd, reader)
	if err != nil {
		return err
	}

	cred := auth.Credential{Username: username, Password: password}
	if err := cred.Validate(); err != nil {
		return err
	}
	if err := store.Store(cmd.Context(), a.Config.SecretService, cred); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.Painter{Color: colorOutput(cmd, a)}.Paint(ui.Success, "✓ Credential stored for "+a.Config.SecretService))
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runCredsCheck(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	store, err := a.CredentialStore(cmd.Context())
	if err != nil {
		return err
	}

	cred, err := store.Lookup(cmd.Context(), a.Config.SecretService)
	if err != nil {
		return err
	}

	painter := ui.Painter{Color: colorOutput(cmd, a)}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", painter.Paint(ui.Success, "✓"), a.Config.SecretService, cred.Username)
	return nil
}

func runCredsDelete(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	store, err := a.WritableCredentialStore()
	if err != nil {
		return err
	}

	if err := store.Delete(cmd.Context(), a.Config.SecretService); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Painter{Color: colorOutput(cmd, a)}.Paint(ui.Success, "✓ Credential removed for "+a.Config.SecretService))
	return nil
}
