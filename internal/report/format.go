// Package report renders snapshots and outcome notices for chat and terminal
// transports. Every function here is pure.
package report

import (
	"fmt"
	"strings"

	"github.com/fentz26/breakroom/internal/models"
)

// Category headings in display order.
const (
	ProposedHeading = "Proposed Break Queue"
	BreakHeading    = "Break Queue"
	AdhocHeading    = "Ad-hoc Queue"
	OfflineHeading  = "Offline Agents"
)

const empty = "*None*"

// Format renders snapshot as chat markdown: the proposed queue, then each
// capped category with its count and a limit marker, then the away total.
func Format(snap models.Snapshot) string {
	var b strings.Builder
	b.WriteString(formatProposed(snap.Proposed))
	b.WriteString(formatCategory(BreakHeading, snap.Break))
	b.WriteString(formatCategory(AdhocHeading, snap.Adhoc))
	b.WriteString(formatCategory(OfflineHeading, snap.Offline))
	fmt.Fprintf(&b, "\n**Total Away from chat: %d/%d**", snap.TotalAway, snap.TotalLimit)
	return b.String()
}

// Compose joins a notice and, when present, the rendered snapshot.
func Compose(res models.Result) string {
	if res.Snapshot == nil {
		return res.Notice
	}
	if res.Notice == "" {
		return Format(*res.Snapshot)
	}
	return res.Notice + "\n\n" + Format(*res.Snapshot)
}

// Periodic renders the scheduled status update.
func Periodic(header string, snap models.Snapshot) string {
	return header + "\n" + Format(snap)
}

func formatProposed(members []models.Member) string {
	lines := make([]string, len(members))
	for i, m := range members {
		lines[i] = fmt.Sprintf("- %s at %s", m.DisplayName, m.TimeLabel)
	}
	return fmt.Sprintf("**__%s__**\n%s\n", ProposedHeading, listOrEmpty(lines))
}

func formatCategory(heading string, c models.Category) string {
	lines := make([]string, len(c.Members))
	for i, m := range c.Members {
		lines[i] = "- " + m.DisplayName
	}

	s := fmt.Sprintf("**__%s (%d/%d)__**\n%s\n", heading, c.Count, c.Max, listOrEmpty(lines))
	if c.Full() {
		s += fmt.Sprintf("\n🚨 **__%s LIMIT REACHED!__** 🚨\n", strings.ToUpper(heading))
	}
	return s
}

func listOrEmpty(lines []string) string {
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}
