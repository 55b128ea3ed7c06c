package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command once; each test uses a different subcommand
// because cobra keeps a subcommand's context between executions
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CAMPAIGNER_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspect_CardSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body>
		<div id="ongoingCampaign" data-campaign-codes="A B">
			<div id="A" data-entry-necessary="true" data-applied-flag="false" data-campaign-name="spring"></div>
			<div id="B" data-entry-necessary="true" data-applied-flag="true" data-campaign-name="summer"></div>
		</div></body></html>`), 0o644))

	out, err := execute(t, "", "inspect", "card", path, "--no-color", "--quiet")
	require.NoError(t, err)

	assert.Contains(t, out, "[card] must-enter spring (A)")
	assert.Contains(t, out, "[card] skip summer (B)")
	assert.Contains(t, out, "2 records, 1 would be attempted")
}

func TestCreds_SetThenCheck(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CAMPAIGNER_SECRET_BACKEND", "file")

	_, err := execute(t, "hunter2\n", "creds", "set", "--username", "me@example.com", "--no-color", "--quiet")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".campaigner", "credentials", "rakuten.json"))
	require.NoError(t, err)

	out, err := execute(t, "", "creds", "check", "--no-color", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")
}

func TestSurfaces_ListsDefaults(t *testing.T) {
	out, err := execute(t, "", "surfaces", "--quiet")
	require.NoError(t, err)

	for _, name := range []string{"point-plus", "general", "card", "pay", "click-point"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "(not configured)")
	assert.Contains(t, out, "id=entryForm:entry -> id=entryForm:entryTeam")
}

func TestHelp_RendersSections(t *testing.T) {
	out, err := execute(t, "", "help", "inspect")
	require.NoError(t, err)

	assert.Contains(t, out, "INSPECT")
	assert.Contains(t, out, "Examples")
	assert.Contains(t, out, "$ campaigner inspect card ~/Downloads/campaign.html")
	assert.Contains(t, out, "--url")
	assert.NotContains(t, out, "\033[", "no colors when not writing to a terminal")
}
