package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/theme"
)

// CreatedMsg is dispatched when a new task is submitted via the form.
type CreatedMsg struct {
	ListID      string
	Name        string
	Description string
	Assignees   []string
	Labels      []string
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdatedMsg is dispatched when an existing task is edited via the form.
type UpdatedMsg struct {
	TaskID string
	Patch  model.TaskPatch
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

const dateLayout = "2006-01-02"

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	assignees   []string
	labels      string
	startDate   string
	dueDate     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	listID   string
	members  []model.User
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetMembers sets the project members offered by the assignee selector.
func (m *Model) SetMembers(members []model.User) {
	m.members = members
}

// StartCreate initializes the form for creating a task in the given list.
func (m *Model) StartCreate(listID string) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.listID = listID
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form pre-filled from an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	m.listID = task.ListID
	m.fb.name = task.Name
	m.fb.description = task.Description
	m.fb.assignees = append([]string(nil), task.Assignees...)
	m.fb.labels = strings.Join(task.Labels, ", ")
	m.fb.startDate = formatDate(task.StartDate)
	m.fb.dueDate = formatDate(task.DueDate)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("What needs doing?").
			Value(&m.fb.name).
			Validate(validateRequired("Name")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
	}

	if assignees := m.assigneeField(); assignees != nil {
		fields = append(fields, assignees)
	}

	fields = append(fields,
		huh.NewInput().
			Title("Labels").
			Placeholder("comma separated (optional)").
			Value(&m.fb.labels),
		huh.NewInput().
			Title("Start Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.startDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) assigneeField() huh.Field {
	if len(m.members) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.members))
	for i, u := range m.members {
		opts[i] = huh.NewOption(u.Name, u.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assignees)
}

func (m Model) handleSubmit() tea.Cmd {
	name := strings.TrimSpace(m.fb.name)
	description := m.fb.description
	assignees := append([]string(nil), m.fb.assignees...)
	labels := parseLabels(m.fb.labels)
	startDate := parseDate(m.fb.startDate)
	dueDate := parseDate(m.fb.dueDate)

	if m.editMode {
		taskID := m.editID
		patch := model.TaskPatch{
			Name:        &name,
			Description: &description,
			Assignees:   &assignees,
			Labels:      &labels,
			StartDate:   &startDate,
			DueDate:     &dueDate,
		}
		return func() tea.Msg { return UpdatedMsg{TaskID: taskID, Patch: patch} }
	}

	listID := m.listID
	return func() tea.Msg {
		return CreatedMsg{
			ListID:      listID,
			Name:        name,
			Description: description,
			Assignees:   assignees,
			Labels:      labels,
			StartDate:   startDate,
			DueDate:     dueDate,
		}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func parseLabels(s string) []string {
	parts := strings.Split(s, ",")
	labels := lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
	return labels
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
