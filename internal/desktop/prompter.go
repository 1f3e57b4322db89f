package desktop

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/kgatracker/kgatracker/internal/updater"
)

const (
	buttonRestart = "Restart"
	buttonLater   = "Later"
)

// Prompter shows the restart question for a downloaded update.
type Prompter struct {
	app *App
}

// NewPrompter creates a Prompter that shows dialogs on app's window.
func NewPrompter(app *App) *Prompter {
	return &Prompter{app: app}
}

// PromptRestart implements updater.Prompter.
func (p *Prompter) PromptRestart(_ context.Context, rel updater.Release) (updater.Choice, error) {
	ctx := p.app.context()
	if ctx == nil {
		return updater.ChoiceLater, errors.New("window not started")
	}
	answer, err := runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         "Application Update",
		Message:       fmt.Sprintf("Version %s has been downloaded. Restart the application to apply the update.", rel.Version),
		Buttons:       []string{buttonRestart, buttonLater},
		DefaultButton: buttonRestart,
		CancelButton:  buttonLater,
	})
	if err != nil {
		return updater.ChoiceLater, fmt.Errorf("restart prompt: %w", err)
	}
	return choiceFor(answer), nil
}

// choiceFor maps the pressed button to a choice. Platforms that ignore
// custom buttons answer Yes/No or Ok/Cancel.
func choiceFor(answer string) updater.Choice {
	switch answer {
	case buttonRestart, "Yes", "Ok", "OK":
		return updater.ChoiceRestart
	default:
		return updater.ChoiceLater
	}
}
