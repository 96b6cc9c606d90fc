package help

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/keys"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/theme"
)

// section groups related bindings under a heading.
type section struct {
	title    string
	bindings []key.Binding
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   keys,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// sectionTitles labels the KeyMap.FullHelp groups, in order.
var sectionTitles = []string{"Navigation", "Views", "Board", "Chat"}

func (m Model) sections() []section {
	groups := m.keys.FullHelp()
	out := make([]section, 0, len(groups))
	for i, g := range groups {
		title := ""
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		out = append(out, section{title: title, bindings: g})
	}
	return out
}

// View renders the keyboard reference grouped by where the keys apply.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		MarginTop(1)
	keyStyle := lipgloss.NewStyle().
		Foreground(theme.ColorYellow)

	rows := []string{titleStyle.Render("Keyboard Shortcuts")}
	for _, sec := range m.sections() {
		rows = append(rows, headingStyle.Render(sec.title))
		for _, b := range sec.bindings {
			h := b.Help()
			rows = append(rows, fmt.Sprintf("  %s %s",
				keyStyle.Render(fmt.Sprintf("%-12s", h.Key)),
				theme.HelpStyle.Render(h.Desc)))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
