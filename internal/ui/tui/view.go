package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/stacklift/stacklift/internal/provision"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderStatus(&b, m)
	if len(m.History) > 0 {
		renderHistory(&b, m)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("stacklift: %s", m.Handle.Name)
	if m.Handle.Region != "" {
		title += fmt.Sprintf(" (%s)", m.Handle.Region)
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.NotFound:
		status += dimStyle.Render("Not found")
	case m.Status.Phase == "":
		status += dimStyle.Render("Fetching...")
	case m.Status.Phase.InProgress():
		status += inFlightStyle.Render(currentSpinner(m.SpinnerFrame) + " " + string(m.Status.Phase))
	case m.Status.Phase.Failed():
		status += failedStyle.Render(string(m.Status.Phase))
	default:
		status += stableStyle.Render(string(m.Status.Phase))
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderStatus(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("Stack"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  environment  %s\n", m.Environment))
	b.WriteString(fmt.Sprintf("  phase        %s\n", phaseLabel(m.Status.Phase)))
	if m.Status.Reason != "" {
		b.WriteString(fmt.Sprintf("  reason       %s\n", m.Status.Reason))
	}
	if !m.Status.ObservedAt.IsZero() {
		age := time.Since(m.Status.ObservedAt).Round(time.Second)
		b.WriteString(dimStyle.Render(fmt.Sprintf("  observed     %s ago", age)))
		b.WriteString("\n")
	}
}

func renderHistory(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("Transitions"))
	b.WriteString("\n")
	for _, tr := range m.History {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			dimStyle.Render(tr.At.Format("15:04:05")), phaseLabel(tr.Phase)))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	b.WriteString(footerStyle.Render(fmt.Sprintf("watching for %s | press q to quit", elapsed)))
	b.WriteString("\n")
}

func phaseLabel(p provision.Phase) string {
	switch {
	case p == "":
		return dimStyle.Render("unknown")
	case p == provision.PhaseNotFound:
		return dimStyle.Render(string(p))
	case p.InProgress():
		return inFlightStyle.Render(string(p))
	case p.Failed():
		return failedStyle.Render(string(p))
	default:
		return stableStyle.Render(string(p))
	}
}
