package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stacklift/stacklift/internal/provision"
)

func newTestModel() Model {
	m := NewStatusModel(provision.StackHandle{Name: "orders-dev", Region: "eu-central-1"}, "dev")
	m.StartTime = time.Now()
	return m
}

func TestModelUpdate_QuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	}
	for _, key := range keys {
		m := newTestModel()
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Errorf("expected quit command for %q", key.String())
		}
	}
}

func TestModelUpdate_StatusRecordsTransition(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(StatusMsg{Status: provision.StackStatus{Phase: provision.PhaseUpdateInProgress}})
	m = updated.(Model)

	if m.Status.Phase != provision.PhaseUpdateInProgress {
		t.Errorf("expected UPDATE_IN_PROGRESS, got %v", m.Status.Phase)
	}
	if len(m.History) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(m.History))
	}
	if m.History[0].Phase != provision.PhaseUpdateInProgress {
		t.Errorf("unexpected transition phase %v", m.History[0].Phase)
	}
}

func TestModelUpdate_RepeatedPhaseIsNotATransition(t *testing.T) {
	m := newTestModel()

	for i := 0; i < 3; i++ {
		updated, _ := m.Update(StatusMsg{Status: provision.StackStatus{Phase: provision.PhaseUpdateInProgress}})
		m = updated.(Model)
	}

	if len(m.History) != 1 {
		t.Errorf("expected 1 transition for a stable phase, got %d", len(m.History))
	}
}

func TestModelUpdate_HistoryIsCapped(t *testing.T) {
	m := newTestModel()

	phases := []provision.Phase{
		provision.PhaseCreateInProgress, provision.PhaseCreateComplete,
		provision.PhaseUpdateInProgress, provision.PhaseUpdateComplete,
	}
	for i := 0; i < 6; i++ {
		for _, p := range phases {
			m.applyStatus(StatusMsg{Status: provision.StackStatus{Phase: p}})
		}
	}

	if len(m.History) != 10 {
		t.Errorf("expected history capped at 10, got %d", len(m.History))
	}
}

func TestModelUpdate_TerminalPhaseQuits(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(StatusMsg{Status: provision.StackStatus{Phase: provision.PhaseUpdateComplete}})
	m = updated.(Model)

	if !m.Done {
		t.Error("expected Done after a terminal phase")
	}
	if cmd == nil {
		t.Error("expected quit command after a terminal phase")
	}
}

func TestModelUpdate_InProgressKeepsWatching(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(StatusMsg{Status: provision.StackStatus{Phase: provision.PhaseDeleteInProgress}})
	m = updated.(Model)

	if m.Done {
		t.Error("expected watch to continue while in progress")
	}
	if cmd != nil {
		t.Error("expected no command while in progress")
	}
}

func TestModelUpdate_FetchErrorQuits(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(StatusMsg{FetchErr: "access denied"})
	m = updated.(Model)

	if m.Err == nil {
		t.Fatal("expected error to be recorded")
	}
	if !strings.Contains(m.Err.Error(), "access denied") {
		t.Errorf("unexpected error %v", m.Err)
	}
	if cmd == nil {
		t.Error("expected quit command on fetch error")
	}
}

func TestModelUpdate_ErrMsgQuits(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(ErrMsg{Err: errors.New("boom")})
	m = updated.(Model)

	if m.Err == nil || cmd == nil {
		t.Error("expected error and quit command")
	}
}

func TestModelUpdate_TickAdvancesSpinner(t *testing.T) {
	m := newTestModel()

	updated, cmd := m.Update(TickMsg{})
	m = updated.(Model)

	if m.SpinnerFrame != 1 {
		t.Errorf("expected spinner frame 1, got %d", m.SpinnerFrame)
	}
	if cmd == nil {
		t.Error("expected a rescheduled tick")
	}
}

func TestModelUpdate_WindowSize(t *testing.T) {
	m := newTestModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if m.Width != 120 || m.Height != 40 {
		t.Errorf("expected 120x40, got %dx%d", m.Width, m.Height)
	}
}

func TestRenderView_Header(t *testing.T) {
	m := newTestModel()
	m.Status = provision.StackStatus{Phase: provision.PhaseUpdateComplete}

	output := renderView(m)

	if !strings.Contains(output, "orders-dev") {
		t.Error("expected stack name in output")
	}
	if !strings.Contains(output, "eu-central-1") {
		t.Error("expected region in output")
	}
	if !strings.Contains(output, "UPDATE_COMPLETE") {
		t.Error("expected phase in output")
	}
}

func TestRenderView_Reason(t *testing.T) {
	m := newTestModel()
	m.Status = provision.StackStatus{
		Phase:  provision.PhaseUpdateFailed,
		Reason: "resource limit exceeded",
	}

	output := renderView(m)

	if !strings.Contains(output, "resource limit exceeded") {
		t.Error("expected failure reason in output")
	}
}

func TestRenderView_History(t *testing.T) {
	m := newTestModel()
	m.History = []transition{
		{Phase: provision.PhaseUpdateInProgress, At: time.Now()},
		{Phase: provision.PhaseUpdateComplete, At: time.Now()},
	}

	output := renderView(m)

	if !strings.Contains(output, "Transitions") {
		t.Error("expected transitions section in output")
	}
	if !strings.Contains(output, "UPDATE_IN_PROGRESS") {
		t.Error("expected transition phase in output")
	}
}

func TestRenderView_NotFound(t *testing.T) {
	m := newTestModel()
	m.NotFound = true

	output := renderView(m)

	if !strings.Contains(output, "Not found") {
		t.Error("expected not-found marker in output")
	}
}

func TestRenderView_Footer(t *testing.T) {
	m := newTestModel()

	output := renderView(m)

	if !strings.Contains(output, "press q to quit") {
		t.Error("expected quit hint in footer")
	}
}

func TestCurrentSpinner_Wraps(t *testing.T) {
	if currentSpinner(0) != currentSpinner(len(spinnerFrames)) {
		t.Error("expected spinner to wrap around")
	}
}
