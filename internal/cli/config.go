package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"prsummary.dev/prsummary/internal/config"
	"prsummary.dev/prsummary/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd(opts *runtime.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration pr-summary would use, as TOML, after applying
--api and --hostname. The file it was read from is shown as a comment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.API != "" {
				cfg.API = opts.API
			}
			if opts.Hostname != "" {
				cfg.Hostname = opts.Hostname
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Path() != "" {
				fmt.Fprintf(out, "# %s\n", cfg.Path())
			}
			_, err = out.Write(data)
			return err
		},
	}

	return cmd
}
