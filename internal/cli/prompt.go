package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// confirm asks a yes/no question, defaulting to no
func confirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("canceled")
	}
	return ok, nil
}
