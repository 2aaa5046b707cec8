package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/tui"
)

// runProgramFunc runs a screen, allowing it to be mocked in tests.
var runProgramFunc = runProgram

// runProgram runs model full screen with the container status routed to it.
// The last error shown by the screen is returned once the user quits.
func runProgram(c *app.Container, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	c.Status.Attach(tui.NewProgramStatus(p.Send))
	defer c.Status.Attach(nil)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(interface{ Err() error }); ok {
		return m.Err()
	}
	return nil
}
