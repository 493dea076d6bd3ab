package approval

import (
	"context"

	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter with interactive terminal forms.
type HuhPrompter struct{}

// Confirm asks a yes/no question.
func (HuhPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	).RunWithContext(ctx)
	return ok, err
}

// Input asks for a typed confirmation.
func (HuhPrompter) Input(ctx context.Context, title, description string) (string, error) {
	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				Value(&value),
		),
	).RunWithContext(ctx)
	return value, err
}
