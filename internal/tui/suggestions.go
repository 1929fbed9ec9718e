package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SuggestionItem is one completion candidate.
type SuggestionItem struct {
	Text        string
	Description string
	Kind        string // kindCommand or kindPhrase
}

const (
	kindCommand = "command"
	kindPhrase  = "phrase"

	maxVisibleSuggestions = 5
)

var commandSuggestions = []SuggestionItem{
	{Text: "/as", Description: "switch identity: /as <id> [name]", Kind: kindCommand},
	{Text: "/board", Description: "show the live board", Kind: kindCommand},
	{Text: "/absences", Description: "show logged absences", Kind: kindCommand},
	{Text: "/mine", Description: "show my logged absences", Kind: kindCommand},
	{Text: "/refresh", Description: "reload from the daemon", Kind: kindCommand},
	{Text: "/quit", Description: "leave the console", Kind: kindCommand},
}

// phraseSuggestions are chat messages the classifier understands.
var phraseSuggestions = []SuggestionItem{
	{Text: "going on break", Description: "take a break", Kind: kindPhrase},
	{Text: "adhoc", Description: "step away for an adhoc task", Kind: kindPhrase},
	{Text: "going offline", Description: "go offline", Kind: kindPhrase},
	{Text: "back", Description: "return to active", Kind: kindPhrase},
	{Text: "break at 4 pm", Description: "propose a break time", Kind: kindPhrase},
	{Text: "status", Description: "ask for the board", Kind: kindPhrase},
}

// Suggestions completes console commands ("/") and quick phrases ("!") for the
// first word of the input.
type Suggestions struct {
	matches []SuggestionItem
	cursor  int
	heading string
}

// NewSuggestions creates an empty completer.
func NewSuggestions() *Suggestions {
	return &Suggestions{}
}

// Update recomputes matches for input. Completion stops once the first word
// is finished.
func (s *Suggestions) Update(input string) {
	s.matches = nil
	s.cursor = 0

	if input == "" || strings.ContainsRune(input, ' ') {
		return
	}

	var source []SuggestionItem
	query := strings.ToLower(input)
	switch {
	case strings.HasPrefix(input, "/"):
		source, s.heading = commandSuggestions, "Commands"
	case strings.HasPrefix(input, "!"):
		source, s.heading = phraseSuggestions, "Quick phrases"
		query = strings.TrimPrefix(query, "!")
	default:
		return
	}

	for _, item := range source {
		if query == "/" || strings.Contains(strings.ToLower(item.Text), query) {
			s.matches = append(s.matches, item)
		}
	}
}

// Next moves the cursor down, wrapping at the end.
func (s *Suggestions) Next() {
	if n := len(s.matches); n > 0 {
		s.cursor = (s.cursor + 1) % n
	}
}

// Prev moves the cursor up, wrapping at the start.
func (s *Suggestions) Prev() {
	if n := len(s.matches); n > 0 {
		s.cursor = (s.cursor - 1 + n) % n
	}
}

// Selected returns the item under the cursor, or nil.
func (s *Suggestions) Selected() *SuggestionItem {
	if s.cursor >= len(s.matches) {
		return nil
	}
	return &s.matches[s.cursor]
}

// IsVisible reports whether there is anything to show.
func (s *Suggestions) IsVisible() bool {
	return len(s.matches) > 0
}

// Render draws the dropdown, scrolled so the cursor stays visible.
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	start := 0
	if s.cursor >= maxVisibleSuggestions {
		start = s.cursor - maxVisibleSuggestions + 1
	}
	end := min(start+maxVisibleSuggestions, len(s.matches))

	hint := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	cur := lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true)

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(s.heading)}
	for i := start; i < end; i++ {
		item := s.matches[i]
		if i == s.cursor {
			lines = append(lines, cur.Render("▶ "+item.Text+"  "+item.Description))
			continue
		}
		lines = append(lines, "  "+item.Text+"  "+hint.Render(item.Description))
	}
	if hidden := len(s.matches) - (end - start); hidden > 0 {
		lines = append(lines, hint.Render(strings.Repeat(" ", 2)+"↑↓ for more"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(width-4, 20))
	return box.Render(strings.Join(lines, "\n"))
}
