package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"prsummary.dev/prsummary/internal/runtime"
)

// newSummaryCmd creates the summary command
func newSummaryCmd(opts *runtime.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <owner> <repo> <number>",
		Short: "Summarize the release pull request <number>",
		Long: `Summarize a release pull request: list every merged pull request into the
same base branch whose commits it contains, and the authors of its commits.

Example:
  pr-summary summary kompiro awesome-app 42`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parsePRNumber(args[2])
			if err != nil {
				return err
			}

			return run(cmd, opts, func(ctx *runtime.Context) error {
				summary, err := ctx.Resolver().ResolvePullRequest(ctx, args[0], args[1], number)
				if err != nil {
					return err
				}
				return printSummary(ctx, summary)
			})
		},
	}

	return cmd
}

func parsePRNumber(s string) (int, error) {
	number, err := strconv.Atoi(s)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid pull request number %q", s)
	}
	return number, nil
}
