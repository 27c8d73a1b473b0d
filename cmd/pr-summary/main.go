package main

import (
	"os"

	"prsummary.dev/prsummary/internal/cli"
	"prsummary.dev/prsummary/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		output.NewSplogWithWriter(os.Stderr, false).Error("%s", err)
		os.Exit(1)
	}
}
