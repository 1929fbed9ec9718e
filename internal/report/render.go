package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/breakroom/internal/models"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	memberStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			PaddingLeft(2)

	fullStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// Render draws snapshot as a terminal board.
func Render(snap models.Snapshot) string {
	var sections []string

	proposed := make([]string, len(snap.Proposed))
	for i, m := range snap.Proposed {
		proposed[i] = fmt.Sprintf("%s at %s", m.DisplayName, m.TimeLabel)
	}
	sections = append(sections, renderBlock(headingStyle.Render(ProposedHeading), proposed))

	for _, c := range []struct {
		heading string
		cat     models.Category
	}{
		{BreakHeading, snap.Break},
		{AdhocHeading, snap.Adhoc},
		{OfflineHeading, snap.Offline},
	} {
		names := make([]string, len(c.cat.Members))
		for i, m := range c.cat.Members {
			names[i] = m.DisplayName
		}
		heading := headingStyle.Render(c.heading) + " " + countStyle(c.cat.Count, c.cat.Max).
			Render(fmt.Sprintf("(%d/%d)", c.cat.Count, c.cat.Max))
		block := renderBlock(heading, names)
		if c.cat.Full() {
			block += "\n" + fullStyle.Render("  limit reached")
		}
		sections = append(sections, block)
	}

	total := countStyle(snap.TotalAway, snap.TotalLimit).
		Render(fmt.Sprintf("Total away: %d/%d", snap.TotalAway, snap.TotalLimit))
	sections = append(sections, total)

	return panelStyle.Render(strings.Join(sections, "\n\n"))
}

func renderBlock(heading string, lines []string) string {
	if len(lines) == 0 {
		return heading + "\n" + emptyStyle.Render("none")
	}
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = memberStyle.Render("• " + l)
	}
	return heading + "\n" + strings.Join(rendered, "\n")
}

func countStyle(count, max int) lipgloss.Style {
	switch {
	case count >= max:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	case count > 0:
		return lipgloss.NewStyle().Foreground(warningColor)
	default:
		return lipgloss.NewStyle().Foreground(successColor)
	}
}
