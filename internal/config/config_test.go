package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"prsummary.dev/prsummary/internal/github"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate runs the test in an empty working directory with an empty user config dir
func isolate(t *testing.T) (cwd, xdg string) {
	cwd = t.TempDir()
	xdg = t.TempDir()
	t.Chdir(cwd)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(LogFileEnv, "")
	return cwd, xdg
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		isolate(t)

		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
		require.Empty(t, cfg.Path())
		require.Equal(t, github.FlavorREST, cfg.Flavor())
		require.Equal(t, 100, cfg.PerPage)
		require.Equal(t, 5000, cfg.MaxFetchPRs)
	})

	t.Run("working directory file wins over the user config", func(t *testing.T) {
		cwd, xdg := isolate(t)
		writeConfig(t, xdg, "pr-summary/config.toml", `api = "graphql"`)
		writeConfig(t, cwd, FileName, `hostname = "github.example.com"`)

		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "github.example.com", cfg.Hostname)
		require.Equal(t, github.FlavorREST, cfg.Flavor())
		require.Equal(t, FileName, cfg.Path())
	})

	t.Run("user config directory", func(t *testing.T) {
		_, xdg := isolate(t)
		path := writeConfig(t, xdg, "pr-summary/config.toml", "api = \"graphql\"\nmax_fetch_prs = 300\n")

		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, github.FlavorGraphQL, cfg.Flavor())
		require.Equal(t, 300, cfg.MaxFetchPRs)
		require.Equal(t, 100, cfg.PerPage)
		require.Equal(t, path, cfg.Path())
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		cwd, _ := isolate(t)
		_, err := Load(filepath.Join(cwd, "missing.toml"))
		require.Error(t, err)
	})

	t.Run("log file from the environment", func(t *testing.T) {
		cwd, _ := isolate(t)
		writeConfig(t, cwd, FileName, `log_file = "from-config.log"`)
		t.Setenv(LogFileEnv, "/tmp/from-env.log")

		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, "/tmp/from-env.log", cfg.LogFile)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("all keys", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "c.toml", `
api = "graphql"
hostname = "github.example.com"
per_page = 50
max_fetch_prs = 1000
max_commit_pages = 10
lookup_concurrency = 8
template = "notes.tmpl"
log_file = "/var/log/pr-summary.log"
release_title = "Deploy %s"
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "notes.tmpl"), cfg.Template)
		require.Equal(t, "Deploy %s", cfg.ReleaseTitle)

		opts := cfg.ResolverOptions()
		require.Equal(t, 50, opts.PerPage)
		require.Equal(t, 1000, opts.MaxFetchPRs)
		require.Equal(t, 10, opts.MaxCommitPages)
		require.Equal(t, 8, opts.LookupConcurrency)
	})

	t.Run("absolute template path is kept", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "c.toml", `template = "/etc/pr-summary/notes.tmpl"`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, "/etc/pr-summary/notes.tmpl", cfg.Template)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "c.toml", `max_prs = 10`)
		_, err := LoadFile(path)
		require.ErrorContains(t, err, "max_prs")
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, content := range map[string]string{
			"api":      `api = "soap"`,
			"negative": `lookup_concurrency = -1`,
			"per page": `per_page = 500`,
			"syntax":   `api = `,
		} {
			t.Run(name, func(t *testing.T) {
				path := writeConfig(t, t.TempDir(), "c.toml", content)
				_, err := LoadFile(path)
				require.Error(t, err)
			})
		}
	})
}

func TestEncode(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)
	require.Contains(t, string(data), "api = 'rest'")
	require.Contains(t, string(data), "max_fetch_prs = 5000")
}
