package cli

import (
	"os"
	"os/exec"
)

// openURL opens url in the user's browser. $BROWSER wins over the platform default.
var openURL = func(url string) error {
	if browser := os.Getenv("BROWSER"); browser != "" {
		return exec.Command(browser, url).Run()
	}
	return browserCommand(url).Run()
}
