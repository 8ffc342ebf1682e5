package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/docqa/session"
)

// Run starts the interactive chat for sess. When path is non-empty the file
// is selected before the first frame.
func Run(ctx context.Context, sess *session.Session, path string) error {
	model := NewModel(ctx, sess, path)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
