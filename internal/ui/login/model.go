package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/theme"
)

// SubmitMsg is dispatched when the user submits their credentials.
type SubmitMsg struct {
	Email    string
	Password string
}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
}

// Model is the Bubble Tea model for the sign-in form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	busy    bool
	width   int
	height  int
}

// New creates a new login form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes a fresh form. Call before showing the view.
func (m *Model) Start() tea.Cmd {
	m.busy = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError shows a failure message above the form and re-enables input.
func (m *Model) SetError(text string) tea.Cmd {
	m.errText = text
	return m.Start()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		m.errText = ""
		email := m.fb.email
		password := m.fb.password
		return m, func() tea.Msg {
			return SubmitMsg{Email: email, Password: password}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the sign-in form centered in the available area.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Sign in to Nexus")}
	if m.errText != "" {
		parts = append(parts, theme.ToastStyle.Render(m.errText))
	}
	if m.busy {
		parts = append(parts, theme.HelpStyle.Render("Signing in..."))
	} else if m.form != nil {
		parts = append(parts, m.form.View())
	}

	content := theme.PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 60 {
		w = 60
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
