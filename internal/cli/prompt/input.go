package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C or Ctrl+D).
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user left the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input prompts for text, prefilled with defaultValue.
func Input(label, defaultValue string) (string, error) {
	return InputWithValidation(label, defaultValue, nil)
}

// InputWithValidation prompts for text until validate accepts it. The
// validation error is shown inline while typing.
func InputWithValidation(label, defaultValue string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
		Validate:  validate,
	}

	result, err := p.Run()
	return result, wrapError(err)
}
