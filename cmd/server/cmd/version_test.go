package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// runVersion executes the version subcommand with pinned build metadata
// and returns its output.
func runVersion(t *testing.T, version, commit, date string, args ...string) string {
	t.Helper()

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
		versionShort = false
	})
	Version, GitCommit, BuildDate = version, commit, date

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"version"}, args...))

	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	out := runVersion(t, "1.0.0", "abc123", "2026-08-01T12:00:00Z")

	require.Contains(t, out, "guestlist server 1.0.0")
	require.Contains(t, out, "commit: abc123")
	require.Contains(t, out, "built:  2026-08-01T12:00:00Z")
	require.Contains(t, out, "go:     go")
}

func TestVersionCommandDefaults(t *testing.T) {
	out := runVersion(t, "dev", "unknown", "unknown")

	require.Contains(t, out, "guestlist server dev")
	require.Contains(t, out, "commit: unknown")
	require.Contains(t, out, "built:  unknown")
}

func TestVersionCommandShort(t *testing.T) {
	out := runVersion(t, "2.3.4", "abc123", "2026-08-01T12:00:00Z", "--short")

	require.Equal(t, "2.3.4\n", out)
}

func TestVersionCommandHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"version", "--help"})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, buf.String(), "Print the version number")
}
