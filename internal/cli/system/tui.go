package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/tui"
)

// TuiCmd opens the interactive household dashboard. Without stored
// credentials the dashboard is read-only.
type TuiCmd struct{}

func (cmd *TuiCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if errors.Is(err, cli.ErrNotSignedIn) {
		app, err = ctx.Open()
	}
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(app), tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	_, err = p.Run()
	return err
}
