// Package prompt provides interactive terminal prompts for CLI commands.
package prompt

import (
	"strings"

	"github.com/manifoldco/promptui"
)

// SelectOption is one entry of a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

func selectTemplates(withDetails bool) *promptui.SelectTemplates {
	t := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
	if withDetails {
		t.Details = `
{{ "Description:" | faint }}	{{ .Description }}`
	}
	return t
}

// Select prompts for one of options, starting on the option at cursor,
// and returns its Value. Typing "/" filters options by label.
func Select(label string, options []SelectOption, cursor int) (string, error) {
	if cursor < 0 || cursor >= len(options) {
		cursor = 0
	}

	p := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: selectTemplates(len(options) > 0 && options[0].Description != ""),
		Size:      10,
		CursorPos: cursor,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(options[index].Label), strings.ToLower(input))
		},
	}

	i, _, err := p.Run()
	if err != nil {
		return "", wrapError(err)
	}
	return options[i].Value, nil
}
