package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stacklift/stacklift/internal/provision"
)

// transition is one observed phase change, kept for the history section.
type transition struct {
	Phase provision.Phase
	At    time.Time
}

// Model is the Bubble Tea model for the status watch.
type Model struct {
	Handle      provision.StackHandle
	Environment string

	Status   provision.StackStatus
	NotFound bool
	History  []transition

	StartTime    time.Time
	SpinnerFrame int

	Width  int
	Height int
	Err    error
	Done   bool
}

// NewStatusModel creates a model for the status --watch command.
func NewStatusModel(handle provision.StackHandle, env string) Model {
	return Model{
		Handle:      handle,
		Environment: env,
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StatusMsg:
		if msg.FetchErr != "" {
			m.Err = errString(msg.FetchErr)
			return m, tea.Quit
		}
		m.applyStatus(msg)
		if m.Status.Phase.Terminal() && !m.Status.Phase.InProgress() {
			m.Done = true
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyStatus(msg StatusMsg) {
	m.NotFound = msg.NotFound
	prev := m.Status.Phase
	m.Status = msg.Status
	if msg.Status.Phase != prev {
		m.History = append(m.History, transition{Phase: msg.Status.Phase, At: time.Now()})
		if len(m.History) > 10 {
			m.History = m.History[len(m.History)-10:]
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

type errString string

func (e errString) Error() string { return string(e) }

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
