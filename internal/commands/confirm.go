package commands

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/abacus/internal/styles"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(title, affirmative string) (bool, error)

// confirmPrompt shows an interactive yes/no form. Aborting the form
// (ctrl+c, esc) counts as "no".
func confirmPrompt(title, affirmative string) (bool, error) {
	var ok bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative(affirmative).
			Negative("Cancel").
			Value(&ok),
	)).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return ok, nil
}
