//go:build !linux && !darwin && !windows

package cli

import (
	"os/exec"
)

// No platform default; only $BROWSER works here
func browserCommand(url string) *exec.Cmd {
	return exec.Command("xdg-open", url)
}
