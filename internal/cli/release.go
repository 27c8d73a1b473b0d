package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"prsummary.dev/prsummary/internal/output"
	"prsummary.dev/prsummary/internal/release"
	"prsummary.dev/prsummary/internal/runtime"
)

// newReleaseCmd creates the release command
func newReleaseCmd(opts *runtime.Options) *cobra.Command {
	var (
		title  string
		dryRun bool
		yes    bool
		web    bool
	)

	cmd := &cobra.Command{
		Use:   "release <owner> <repo> <base> <head>",
		Short: "Create or update the release pull request from <head> into <base>",
		Long: `Find the open pull request from <head> into <base>, creating it when missing,
and replace its body with the summary of the pull requests it ships.

With --dry-run nothing is created or edited; the change to the body is shown
as a diff instead.

Example:
  pr-summary release kompiro awesome-app master develop --dry-run`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx *runtime.Context) error {
				renderer, err := ctx.Renderer()
				if err != nil {
					return err
				}

				publisher := release.NewPublisher(ctx.Client, ctx.Resolver(), renderer, ctx.Splog)
				publisher.TitleFormat = ctx.Config.ReleaseTitle
				if !yes {
					publisher.Confirm = confirmCreate
				}

				result, err := publisher.Prepare(ctx, release.PrepareOptions{
					Owner:  args[0],
					Repo:   args[1],
					Base:   args[2],
					Head:   args[3],
					Title:  title,
					DryRun: dryRun,
				})
				if err != nil {
					return err
				}

				if dryRun {
					printDiff(ctx.Splog, result.Diff)
				} else if !result.Updated {
					ctx.Splog.Info("#%d is already up to date.", result.PullRequest.Number)
				}
				reportWarnings(ctx.Splog, result.Summary)

				if web && result.PullRequest != nil && result.PullRequest.HTMLURL != "" {
					if err := openURL(result.PullRequest.HTMLURL); err != nil {
						ctx.Splog.Warn("Could not open %s: %v", result.PullRequest.HTMLURL, err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title for a newly created pull request (default from release_title)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the new body without creating or editing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Create the pull request without asking")
	cmd.Flags().BoolVarP(&web, "web", "w", false, "Open the release pull request in a browser")

	return cmd
}

func confirmCreate(prompt string) (bool, error) {
	if !output.IsInteractive() {
		return false, errors.New("not creating a pull request in a non-interactive session; pass --yes")
	}
	return confirm(prompt)
}

func printDiff(splog *output.Splog, diff string) {
	if diff == "" {
		splog.Info("No changes.")
		return
	}

	var b strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = output.Heading(line)
		case strings.HasPrefix(line, "@@"):
			line = output.ColorCyan(line)
		case strings.HasPrefix(line, "+"):
			line = output.ColorGreen(line)
		case strings.HasPrefix(line, "-"):
			line = output.ColorRed(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	splog.Page(b.String())
}
