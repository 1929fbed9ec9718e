// Package tui provides the interactive breakroom console.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/report"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	sentStyle = lipgloss.NewStyle().
			Foreground(cyanColor)

	onlineStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

const (
	modeBoard    = "board"
	modeAbsences = "absences"

	// DefaultRefresh is how often the board is polled.
	DefaultRefresh = 5 * time.Second

	maxTranscript = 200
)

// App is the main TUI application model.
type App struct {
	client       *Client
	agentID      string
	name         string
	input        textinput.Model
	viewport     viewport.Model
	width        int
	height       int
	mode         string
	snapshot     *models.Snapshot
	absences     []models.Absence
	mineOnly     bool
	transcript   []string
	message      string
	daemonOnline bool
	suggestions  *Suggestions
	refresh      time.Duration
}

// New creates a console that talks to apiAddr as the given agent.
func New(apiAddr, agentID, name string) *App {
	ti := textinput.New()
	ti.Placeholder = "Say something: break | adhoc | offline | back | break at 4 pm | status   (/ for commands)"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80

	vp := viewport.New(60, 20)

	if name == "" {
		name = agentID
	}

	return &App{
		client:      NewClient(apiAddr),
		agentID:     agentID,
		name:        name,
		input:       ti,
		viewport:    vp,
		mode:        modeBoard,
		suggestions: NewSuggestions(),
		refresh:     DefaultRefresh,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.fetchSnapshot(),
		a.checkDaemon(),
		a.tickCmd(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit

		case "esc":
			if a.mode != modeBoard {
				a.mode = modeBoard
				return a, a.fetchSnapshot()
			}

		case "up":
			if a.suggestions.IsVisible() {
				a.suggestions.Prev()
				return a, nil
			}
			a.viewport.LineUp(1)

		case "down":
			if a.suggestions.IsVisible() {
				a.suggestions.Next()
				return a, nil
			}
			a.viewport.LineDown(1)

		case "tab":
			a.acceptSuggestion()
			return a, nil

		case "enter":
			if a.suggestions.IsVisible() {
				a.acceptSuggestion()
				return a, nil
			}
			text := strings.TrimSpace(a.input.Value())
			if text == "" {
				return a, nil
			}
			a.input.SetValue("")
			a.suggestions.Update("")
			if strings.HasPrefix(text, "/") {
				return a, a.executeCommand(text)
			}
			return a, a.sendMessage(text)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4
		a.viewport.Width = max(msg.Width/2-4, 20)
		a.viewport.Height = max(msg.Height-10, 5)
		a.syncTranscript()

	case snapshotLoadedMsg:
		a.snapshot = &msg.snap
		a.daemonOnline = true

	case absencesLoadedMsg:
		a.absences = msg.absences

	case replyMsg:
		a.daemonOnline = true
		a.appendTranscript(sentStyle.Render(fmt.Sprintf("%s: %s", a.name, msg.text)))
		if msg.reply.Reply != "" {
			a.appendTranscript(msg.reply.Reply)
		}
		if msg.reply.Snapshot != nil {
			a.snapshot = msg.reply.Snapshot
		}
		a.message = string(msg.reply.Outcome)
		if a.mode == modeAbsences {
			cmds = append(cmds, a.fetchAbsences())
		}

	case daemonStatusMsg:
		a.daemonOnline = msg.online

	case tickMsg:
		cmds = append(cmds, a.tickCmd())
		if a.mode == modeAbsences {
			cmds = append(cmds, a.fetchAbsences())
		} else {
			cmds = append(cmds, a.fetchSnapshot())
		}

	case commandResultMsg:
		a.message = msg.message

	case errMsg:
		a.message = "Error: " + msg.err.Error()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	a.suggestions.Update(a.input.Value())

	return a, tea.Batch(cmds...)
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	daemonStatus := onlineStyle.Render("● DAEMON")
	if !a.daemonOnline {
		daemonStatus = offlineStyle.Render("○ DAEMON")
	}

	header := titleStyle.Render("Breakroom")
	header += "  " + daemonStatus
	header += "  " + lipgloss.NewStyle().Foreground(cyanColor).Render(fmt.Sprintf("[%s as %s]", a.agentID, a.name))
	if a.snapshot != nil {
		header += "  " + lipgloss.NewStyle().Foreground(awayColor(a.snapshot)).
			Render(fmt.Sprintf("%d/%d away", a.snapshot.TotalAway, a.snapshot.TotalLimit))
	}

	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", a.width) + "\n")

	var left string
	switch a.mode {
	case modeAbsences:
		left = a.renderAbsences()
	default:
		if a.snapshot == nil {
			left = "\n  Loading board...\n"
		} else {
			left = report.Render(*a.snapshot)
		}
	}
	right := panelStyle.Render(a.viewport.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))

	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message))
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(a.input.View()))

	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeAbsences:
		status = fmt.Sprintf(" Absences: %d | Esc:board | /refresh | Ctrl+C:quit", len(a.absences))
	default:
		status = " Enter:send | /:commands | !:phrases | ↑↓:scroll | Ctrl+C:quit"
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))

	return b.String()
}

func (a *App) renderAbsences() string {
	title := "Logged absences"
	if a.mineOnly {
		title = "My absences"
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(title))
	if len(a.absences) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render("  none"))
		return panelStyle.Render(strings.Join(lines, "\n"))
	}

	for _, ab := range a.absences {
		lines = append(lines, "  "+formatAbsence(ab))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// formatAbsence renders one ledger row. Open rows show as ongoing.
func formatAbsence(ab models.Absence) string {
	started := ab.StartedAt.Local().Format("Jan 02 15:04")
	span := lipgloss.NewStyle().Foreground(warningColor).Render("ongoing")
	if ab.EndedAt != nil {
		span = ab.EndedAt.Sub(ab.StartedAt).Round(time.Minute).String()
	}
	return fmt.Sprintf("%-8s %-16s %s  %s", ab.Category, ab.DisplayName, started, span)
}

func awayColor(snap *models.Snapshot) lipgloss.Color {
	switch {
	case snap.TotalAway >= snap.TotalLimit:
		return errorColor
	case snap.TotalAway > 0:
		return warningColor
	default:
		return successColor
	}
}

func (a *App) acceptSuggestion() {
	selected := a.suggestions.Selected()
	if selected == nil {
		return
	}
	if selected.Kind == kindCommand {
		a.input.SetValue(selected.Text + " ")
	} else {
		a.input.SetValue(selected.Text)
	}
	a.input.CursorEnd()
	a.suggestions.Update("")
}

func (a *App) appendTranscript(line string) {
	a.transcript = append(a.transcript, line)
	if len(a.transcript) > maxTranscript {
		a.transcript = a.transcript[len(a.transcript)-maxTranscript:]
	}
	a.syncTranscript()
}

func (a *App) syncTranscript() {
	a.viewport.SetContent(strings.Join(a.transcript, "\n\n"))
	a.viewport.GotoBottom()
}

func (a *App) executeCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/as":
		if len(args) < 1 {
			return a.result("Usage: /as <id> [name]")
		}
		a.agentID = args[0]
		a.name = args[0]
		if len(args) > 1 {
			a.name = strings.Join(args[1:], " ")
		}
		return a.result(fmt.Sprintf("Now speaking as %s (%s)", a.name, a.agentID))

	case "/board":
		a.mode = modeBoard
		return a.fetchSnapshot()

	case "/absences":
		a.mode = modeAbsences
		a.mineOnly = false
		return a.fetchAbsences()

	case "/mine":
		a.mode = modeAbsences
		a.mineOnly = true
		return a.fetchAbsences()

	case "/refresh":
		if a.mode == modeAbsences {
			return tea.Batch(a.fetchAbsences(), a.checkDaemon())
		}
		return tea.Batch(a.fetchSnapshot(), a.checkDaemon())

	case "/quit", "/exit":
		return tea.Quit

	default:
		return a.result("Unknown command: " + cmd)
	}
}

func (a *App) result(message string) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{message}
	}
}

func (a *App) sendMessage(text string) tea.Cmd {
	agentID, name := a.agentID, a.name
	return func() tea.Msg {
		reply, err := a.client.Send(agentID, name, text)
		if err != nil {
			return errMsg{err}
		}
		return replyMsg{text: text, reply: reply}
	}
}

func (a *App) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.client.Snapshot()
		if err != nil {
			return errMsg{err}
		}
		return snapshotLoadedMsg{snap}
	}
}

func (a *App) fetchAbsences() tea.Cmd {
	agentID := ""
	if a.mineOnly {
		agentID = a.agentID
	}
	return func() tea.Msg {
		absences, err := a.client.Absences(agentID, false, 50)
		if err != nil {
			return errMsg{err}
		}
		return absencesLoadedMsg{absences}
	}
}

func (a *App) checkDaemon() tea.Cmd {
	return func() tea.Msg {
		ok, err := a.client.CheckHealth()
		return daemonStatusMsg{online: err == nil && ok}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.refresh, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
