package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/tokime/internal/manager"
)

// Run shows the popup on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, mgr *manager.Manager, opts Options) error {
	p := tea.NewProgram(New(ctx, mgr, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
