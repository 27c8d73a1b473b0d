package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestSplogConsole(t *testing.T) {
	t.Setenv("DEBUG", "")

	t.Run("info warn and error are printed without timestamps", func(t *testing.T) {
		var buf bytes.Buffer
		splog := NewSplogWithWriter(&buf, false)

		splog.Info("resolved %d pull requests", 2)
		splog.Warn("list may be incomplete")
		splog.Error("boom")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Equal(t, []string{
			"resolved 2 pull requests",
			"⚠️  list may be incomplete",
			"❌ boom",
		}, lines)
	})

	t.Run("debug is hidden unless verbose", func(t *testing.T) {
		var quiet, verbose bytes.Buffer
		NewSplogWithWriter(&quiet, false).Debug("page %d", 1)
		NewSplogWithWriter(&verbose, true).Debug("page %d", 1)

		require.Empty(t, quiet.String())
		require.Equal(t, "page 1\n", verbose.String())
	})

	t.Run("page writes raw content", func(t *testing.T) {
		var buf bytes.Buffer
		splog := NewSplogWithWriter(&buf, false)
		splog.Page("## Contributors\n")
		splog.Newline()
		require.Equal(t, "## Contributors\n\n", buf.String())
	})

	t.Run("percent signs survive when there are no args", func(t *testing.T) {
		var buf bytes.Buffer
		NewSplogWithWriter(&buf, false).Info("100% merged")
		require.Equal(t, "100% merged\n", buf.String())
	})
}

func TestSplogFile(t *testing.T) {
	t.Setenv("DEBUG", "")
	logFile := filepath.Join(t.TempDir(), "logs", "pr-summary.log")

	var buf bytes.Buffer
	splog, err := NewSplogWithOptions(Options{Writer: &buf, LogFile: logFile})
	require.NoError(t, err)

	splog.Debug("fetched page %d", 3)
	splog.Info("done")
	require.NoError(t, splog.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "fetched page 3")
	require.Contains(t, string(data), "level=DEBUG")
	require.Contains(t, string(data), "done")
	require.Equal(t, "done\n", buf.String())
}

func TestColors(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	require.Equal(t, "warn", ColorYellow("warn"))
	require.Equal(t, "err", ColorRed("err"))
	require.Equal(t, "x", ColorCyan("x"))
}
