package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stacklift/stacklift/internal/provision"
)

// RunStatusTUI watches the stack until it reaches a stable phase or the
// operator quits. Fetching happens in a background goroutine that feeds the
// program messages, the model itself never blocks.
func RunStatusTUI(ctx context.Context, client provision.Client, handle provision.StackHandle, env string, interval time.Duration) error {
	m := NewStatusModel(handle, env)

	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Fetch immediately with a short timeout to avoid hanging.
		fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		p.Send(fetchStatus(fetchCtx, client, handle))
		cancel()

		for {
			select {
			case <-ctx.Done():
				p.Send(ErrMsg{Err: ctx.Err()})
				return
			case <-ticker.C:
				p.Send(fetchStatus(ctx, client, handle))
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}

func fetchStatus(ctx context.Context, client provision.Client, handle provision.StackHandle) StatusMsg {
	status, err := client.DescribeStack(ctx, handle)
	if err != nil {
		return StatusMsg{FetchErr: err.Error()}
	}
	return StatusMsg{
		Status:   status,
		NotFound: status.Phase == provision.PhaseNotFound,
	}
}

// RenderStatusOnce renders the status once using lipgloss (non-watch mode).
func RenderStatusOnce(status provision.StackStatus, handle provision.StackHandle, env string) string {
	m := NewStatusModel(handle, env)
	m.applyStatus(StatusMsg{Status: status, NotFound: status.Phase == provision.PhaseNotFound})
	return renderView(m)
}
