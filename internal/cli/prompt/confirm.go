package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// Confirm asks a yes/no question. An empty answer takes defaultYes.
// Returns ErrAborted if the user presses Ctrl+C.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	p := promptui.Prompt{
		Label: fmt.Sprintf("%s [%s]", label, hint),
		Validate: func(input string) error {
			if _, ok := parseAnswer(input, defaultYes); !ok {
				return errors.New("answer y or n")
			}
			return nil
		},
	}

	result, err := p.Run()
	if err != nil {
		return false, wrapError(err)
	}
	yes, _ := parseAnswer(result, defaultYes)
	return yes, nil
}

func parseAnswer(input string, defaultYes bool) (yes, ok bool) {
	switch input {
	case "":
		return defaultYes, true
	case "y", "Y", "yes", "Yes", "YES":
		return true, true
	case "n", "N", "no", "No", "NO":
		return false, true
	}
	return false, false
}

// ConfirmWithForce returns true without asking when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}
