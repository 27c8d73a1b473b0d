package cli

import (
	"os"

	"github.com/spf13/cobra"

	"prsummary.dev/prsummary/internal/model"
	"prsummary.dev/prsummary/internal/output"
	"prsummary.dev/prsummary/internal/runtime"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	opts := &runtime.Options{}

	rootCmd := &cobra.Command{
		Use:   "pr-summary",
		Short: "Summarize the pull requests and contributors of a release",
		Long: `pr-summary lists the pull requests merged into a release and the people
who wrote its commits, ready to paste into a release note.

The token is read from GITHUB_TOKEN, or from 'gh auth token' when unset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML config file (default .pr-summary.toml)")
	flags.StringVar(&opts.API, "api", "", "GitHub API to use: rest or graphql")
	flags.StringVar(&opts.Hostname, "hostname", "", "GitHub host, for GitHub Enterprise")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Print debug output")

	rootCmd.AddCommand(newSummaryCmd(opts))
	rootCmd.AddCommand(newRangeCmd(opts))
	rootCmd.AddCommand(newReleaseCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

// run provides a runtime context to a command's execution function
func run(cmd *cobra.Command, opts *runtime.Options, fn func(ctx *runtime.Context) error) error {
	o := *opts
	if out := cmd.OutOrStdout(); out != os.Stdout {
		o.Writer = out
	}

	ctx, err := runtime.GetContext(cmd.Context(), o)
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()

	return fn(ctx)
}

// printSummary writes the rendered body, then any warnings
func printSummary(ctx *runtime.Context, summary *model.Summary) error {
	renderer, err := ctx.Renderer()
	if err != nil {
		return err
	}
	body, err := renderer.Render(summary)
	if err != nil {
		return err
	}
	ctx.Splog.Page(body)
	reportWarnings(ctx.Splog, summary)
	return nil
}

func reportWarnings(splog *output.Splog, summary *model.Summary) {
	for _, w := range summary.Warnings {
		splog.Warn("%s", w)
	}
}
