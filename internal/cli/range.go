package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"prsummary.dev/prsummary/internal/git"
	"prsummary.dev/prsummary/internal/resolver"
	"prsummary.dev/prsummary/internal/runtime"
)

// newRangeCmd creates the range command
func newRangeCmd(opts *runtime.Options) *cobra.Command {
	var (
		self  int
		local string
	)

	cmd := &cobra.Command{
		Use:   "range <owner> <repo> <base> <head>",
		Short: "Summarize what <head> would bring into <base>",
		Long: `Summarize the commits reachable from <head> but not from <base>, and the pull
requests whose merge commits are among them. No pull request needs to exist.

History is listed through the GitHub API unless --local points at a clone, in
which case it is read with go-git. With --local, pass - for owner and repo to
take them from the origin remote.

Example:
  pr-summary range kompiro awesome-app master develop
  pr-summary range - - origin/master origin/develop --local .`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := resolver.RangeRequest{
				Owner: args[0],
				Repo:  args[1],
				Base:  args[2],
				Head:  args[3],
				Self:  self,
			}

			var repo *git.Repository
			if local != "" {
				var err error
				repo, err = git.Open(local)
				if err != nil {
					return err
				}
				if req.Owner == "-" || req.Repo == "-" {
					info, err := repo.RemoteRepo(git.DefaultRemote)
					if err != nil {
						return fmt.Errorf("cannot infer owner and repo: %w", err)
					}
					req.Owner, req.Repo = info.Owner, info.Repo
				}
			} else if req.Owner == "-" || req.Repo == "-" {
				return fmt.Errorf("owner and repo can only be inferred with --local")
			}

			return run(cmd, opts, func(ctx *runtime.Context) error {
				r := ctx.Resolver()

				var source resolver.WindowSource = r.RemoteWindow(req.Owner, req.Repo)
				if repo != nil {
					ctx.Splog.Debug("Reading history from %s", repo.Path())
					source = git.NewWindow(repo, ctx.Config.MaxCommitPages*ctx.Config.PerPage)
				}

				summary, err := r.ResolveRange(ctx, req, source)
				if err != nil {
					return err
				}
				return printSummary(ctx, summary)
			})
		},
	}

	cmd.Flags().IntVar(&self, "self", 0, "Pull request number to leave out, such as the release pull request itself")
	cmd.Flags().StringVar(&local, "local", "", "Read history from the git clone at this path")

	return cmd
}
