package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stacklift/stacklift/internal/check"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// RenderText renders the report as plain text for non-interactive output
// and the report artifact file. Rendering never re-runs checks.
func RenderText(r *Report) string {
	var b strings.Builder

	title := fmt.Sprintf("stacklift report: %s (%s, %s)", r.Stack, r.Environment, r.Phase)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	for _, cat := range categories(r.Items) {
		b.WriteString(string(cat) + "\n")
		b.WriteString(strings.Repeat("-", len(cat)) + "\n")
		for _, item := range r.Items {
			if item.Category != cat {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-6s %-24s %s\n", marker(item.Outcome), item.Name, item.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("total=%d passed=%d failed=%d warned=%d success=%d%%\n",
		r.Total, r.Passed, r.Failed, r.Warned, r.SuccessRate))

	if r.SnapshotID != "" {
		b.WriteString(fmt.Sprintf("preserved snapshot: %s\n", r.SnapshotID))
	}
	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations\n---------------\n")
		for _, rec := range r.Recommendations {
			b.WriteString("  - " + rec + "\n")
		}
	}
	b.WriteString(fmt.Sprintf("\ngenerated at %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	return b.String()
}

// RenderStyled renders the report with color for interactive terminals.
func RenderStyled(r *Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s  %s", r.Stack, r.Environment, r.Phase)) + "\n\n")

	for _, cat := range categories(r.Items) {
		b.WriteString(dimStyle.Render(string(cat)) + "\n")
		for _, item := range r.Items {
			if item.Category != cat {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s  %-24s %s\n", styledMarker(item.Outcome), item.Name, item.Message))
		}
	}

	summary := fmt.Sprintf("\n%d checks: %d passed, %d failed, %d warned (%d%%)\n",
		r.Total, r.Passed, r.Failed, r.Warned, r.SuccessRate)
	if r.Failed > 0 {
		b.WriteString(failStyle.Render(summary))
	} else {
		b.WriteString(passStyle.Render(summary))
	}
	return b.String()
}

// RenderJSON renders the report for --json output.
func RenderJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

func marker(o check.Outcome) string {
	switch o {
	case check.Pass:
		return "[OK]"
	case check.Fail:
		return "[!!]"
	case check.Warn:
		return "[??]"
	}
	return "[  ]"
}

func styledMarker(o check.Outcome) string {
	switch o {
	case check.Pass:
		return passStyle.Render("[OK]")
	case check.Fail:
		return failStyle.Render("[!!]")
	case check.Warn:
		return warnStyle.Render("[??]")
	}
	return "[  ]"
}

// categories returns the categories present in the items, in first-seen
// order, so rendering groups related checks together.
func categories(items []check.Result) []check.Category {
	var order []check.Category
	seen := make(map[check.Category]bool)
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			order = append(order, item.Category)
		}
	}
	return order
}
