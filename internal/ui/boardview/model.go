package boardview

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/board"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/keys"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/theme"
)

// MoveTaskMsg is sent when a grabbed task is dropped at a new position.
type MoveTaskMsg struct {
	TaskID       string
	SourceListID string
	DestListID   string
	DestIndex    int
}

// CreateListMsg is sent when the user submits a new list name.
type CreateListMsg struct {
	Name string
}

// RenameListMsg is sent when the user submits a new name for a list.
type RenameListMsg struct {
	ListID string
	Name   string
}

// DeleteListMsg is sent when the user deletes the focused list.
type DeleteListMsg struct {
	ListID string
}

// DeleteTaskMsg is sent when the user deletes the focused task.
type DeleteTaskMsg struct {
	TaskID string
}

// NewTaskRequestMsg asks the root model to open the task form for a list.
type NewTaskRequestMsg struct {
	ListID string
}

// EditTaskRequestMsg asks the root model to open the task form
// pre-filled from an existing task.
type EditTaskRequestMsg struct {
	Task model.Task
}

// inputMode distinguishes what the inline text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputNewList
	inputRenameList
)

// grabState tracks a task mid-move: where it came from and where the
// cursor has carried it so far. The move is not applied until drop.
type grabState struct {
	taskID       string
	sourceListID string
	destList     int
	destIndex    int
}

// Model is the kanban board view. It renders snapshots owned by the
// root model and translates key input into board intent messages.
type Model struct {
	snapshot board.Snapshot
	keys     *keys.KeyMap

	listIdx int
	taskIdx map[string]int

	grab *grabState

	mode         inputMode
	input        textinput.Model
	renameListID string

	width  int
	height int
}

// New creates a new board view model.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 120

	return Model{
		keys:    k,
		taskIdx: make(map[string]int),
		input:   ti,
		width:   width,
		height:  height,
	}
}

// SetSnapshot replaces the rendered board state. Cursor positions are
// clamped against the new shape, and an in-flight grab is cancelled if
// its task vanished.
func (m *Model) SetSnapshot(snap board.Snapshot) {
	m.snapshot = snap

	if m.listIdx >= len(snap.Lists) {
		m.listIdx = len(snap.Lists) - 1
	}
	if m.listIdx < 0 {
		m.listIdx = 0
	}
	for _, l := range snap.Lists {
		if m.taskIdx[l.ID] >= len(l.Tasks) {
			m.taskIdx[l.ID] = len(l.Tasks) - 1
		}
		if m.taskIdx[l.ID] < 0 {
			m.taskIdx[l.ID] = 0
		}
	}

	if m.grab != nil {
		if _, _, ok := snap.FindTask(m.grab.taskID); !ok {
			m.grab = nil
		} else {
			m.clampGrab()
		}
	}
}

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode != inputNone {
		return m.handleInputKeys(keyMsg)
	}
	if m.grab != nil {
		return m.handleGrabKeys(keyMsg)
	}
	return m.handleNormalKeys(keyMsg)
}

// handleInputKeys processes key input while the inline name prompt is open.
func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.input.Value()
		mode := m.mode
		listID := m.renameListID
		m.mode = inputNone
		m.input.Reset()
		if name == "" {
			return m, nil
		}
		switch mode {
		case inputNewList:
			return m, func() tea.Msg { return CreateListMsg{Name: name} }
		case inputRenameList:
			return m, func() tea.Msg { return RenameListMsg{ListID: listID, Name: name} }
		}
		return m, nil

	case "esc":
		m.mode = inputNone
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleGrabKeys moves the grabbed task's drop target with the cursor
// and applies the move on drop.
func (m Model) handleGrabKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	g := m.grab

	switch {
	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Select):
		m.grab = nil
		destList := m.snapshot.Lists[g.destList]
		m.listIdx = g.destList
		m.taskIdx[destList.ID] = g.destIndex
		return m, func() tea.Msg {
			return MoveTaskMsg{
				TaskID:       g.taskID,
				SourceListID: g.sourceListID,
				DestListID:   destList.ID,
				DestIndex:    g.destIndex,
			}
		}

	case key.Matches(msg, m.keys.Back):
		m.grab = nil
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if g.destIndex > 0 {
			g.destIndex--
		}

	case key.Matches(msg, m.keys.Down):
		if g.destIndex < m.dropCeiling(g.destList) {
			g.destIndex++
		}

	case key.Matches(msg, m.keys.Left):
		if g.destList > 0 {
			g.destList--
			m.clampGrab()
		}

	case key.Matches(msg, m.keys.Right):
		if g.destList < len(m.snapshot.Lists)-1 {
			g.destList++
			m.clampGrab()
		}
	}

	return m, nil
}

// handleNormalKeys processes key input with no grab or prompt active.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.listIdx > 0 {
			m.listIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.listIdx < len(m.snapshot.Lists)-1 {
			m.listIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if l, ok := m.focusedList(); ok && m.taskIdx[l.ID] > 0 {
			m.taskIdx[l.ID]--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if l, ok := m.focusedList(); ok && m.taskIdx[l.ID] < len(l.Tasks)-1 {
			m.taskIdx[l.ID]++
		}
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		l, ok := m.focusedList()
		if !ok || len(l.Tasks) == 0 {
			return m, nil
		}
		idx := m.taskIdx[l.ID]
		m.grab = &grabState{
			taskID:       l.Tasks[idx].ID,
			sourceListID: l.ID,
			destList:     m.listIdx,
			destIndex:    idx,
		}
		return m, nil

	case key.Matches(msg, m.keys.NewList):
		m.mode = inputNewList
		m.input.Placeholder = "list name"
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.RenameList):
		l, ok := m.focusedList()
		if !ok {
			return m, nil
		}
		m.mode = inputRenameList
		m.renameListID = l.ID
		m.input.Placeholder = l.Name
		m.input.Reset()
		m.input.SetValue(l.Name)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.NewTask):
		l, ok := m.focusedList()
		if !ok {
			return m, nil
		}
		listID := l.ID
		return m, func() tea.Msg { return NewTaskRequestMsg{ListID: listID} }

	case key.Matches(msg, m.keys.EditTask):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return EditTaskRequestMsg{Task: task} }

	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.focusedTask(); ok {
			taskID := task.ID
			return m, func() tea.Msg { return DeleteTaskMsg{TaskID: taskID} }
		}
		if l, ok := m.focusedList(); ok {
			listID := l.ID
			return m, func() tea.Msg { return DeleteListMsg{ListID: listID} }
		}
		return m, nil
	}

	return m, nil
}

// View renders the board columns side by side.
func (m Model) View() string {
	if len(m.snapshot.Lists) == 0 {
		return m.renderEmptyState()
	}

	display := m.displaySnapshot()

	columns := make([]string, len(display.Lists))
	colWidth := m.columnWidth(len(display.Lists))
	for i, l := range display.Lists {
		columns[i] = m.renderColumn(l, i, colWidth)
	}
	boardRow := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	if m.mode != inputNone {
		prompt := lipgloss.NewStyle().
			Padding(0, 1).
			Render(m.input.View())
		return lipgloss.JoinVertical(lipgloss.Left, prompt, boardRow)
	}
	return boardRow
}

// SetSize updates the board view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// GrabActive reports whether a task is mid-move, so the root model can
// adjust the status bar hints.
func (m Model) GrabActive() bool {
	return m.grab != nil
}

// InputActive reports whether the inline name prompt is capturing
// keystrokes, so the root model leaves printable keys alone.
func (m Model) InputActive() bool {
	return m.mode != inputNone
}

// displaySnapshot returns the snapshot with an in-flight grab rendered
// at its prospective drop position.
func (m Model) displaySnapshot() board.Snapshot {
	if m.grab == nil {
		return m.snapshot
	}

	snap := m.snapshot.Clone()
	listID, idx, ok := snap.FindTask(m.grab.taskID)
	if !ok {
		return snap
	}

	srcIdx := snap.ListIndex(listID)
	src := &snap.Lists[srcIdx]
	task := src.Tasks[idx]
	src.Tasks = append(src.Tasks[:idx], src.Tasks[idx+1:]...)

	dest := &snap.Lists[m.grab.destList]
	at := m.grab.destIndex
	if at > len(dest.Tasks) {
		at = len(dest.Tasks)
	}
	task.ListID = dest.ID
	dest.Tasks = append(dest.Tasks, model.Task{})
	copy(dest.Tasks[at+1:], dest.Tasks[at:])
	dest.Tasks[at] = task

	return snap
}

// dropCeiling returns the maximum drop index within a destination list,
// accounting for whether the grabbed task already occupies it.
func (m Model) dropCeiling(destList int) int {
	l := m.snapshot.Lists[destList]
	n := len(l.Tasks)
	if m.grab != nil && l.ID != m.grab.sourceListID {
		return n
	}
	return n - 1
}

// clampGrab pulls the drop target back inside the current board shape.
func (m *Model) clampGrab() {
	if m.grab == nil {
		return
	}
	if m.grab.destList >= len(m.snapshot.Lists) {
		m.grab.destList = len(m.snapshot.Lists) - 1
	}
	if m.grab.destList < 0 {
		m.grab.destList = 0
	}
	ceiling := m.dropCeiling(m.grab.destList)
	if ceiling < 0 {
		ceiling = 0
	}
	if m.grab.destIndex > ceiling {
		m.grab.destIndex = ceiling
	}
}

func (m Model) focusedList() (model.List, bool) {
	if m.listIdx < 0 || m.listIdx >= len(m.snapshot.Lists) {
		return model.List{}, false
	}
	return m.snapshot.Lists[m.listIdx], true
}

func (m Model) focusedTask() (model.Task, bool) {
	l, ok := m.focusedList()
	if !ok || len(l.Tasks) == 0 {
		return model.Task{}, false
	}
	idx := m.taskIdx[l.ID]
	if idx < 0 || idx >= len(l.Tasks) {
		return model.Task{}, false
	}
	return l.Tasks[idx], true
}

// renderColumn draws one list as a bordered column of cards.
func (m Model) renderColumn(l model.List, idx int, width int) string {
	title := theme.ColumnTitleStyle.Render(
		fmt.Sprintf("%s (%d)", l.Name, len(l.Tasks)),
	)

	rows := []string{title}
	for i, t := range l.Tasks {
		rows = append(rows, m.renderCard(l, t, idx, i, width-4))
	}
	if len(l.Tasks) == 0 {
		rows = append(rows, theme.HelpStyle.Render("empty"))
	}

	style := theme.ColumnStyle
	if idx == m.listIdx {
		style = theme.FocusedColumnStyle
	}

	return style.
		Width(width - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderCard draws one task line with its label and due-date chips.
func (m Model) renderCard(l model.List, t model.Task, listIdx, cardIdx, width int) string {
	line := truncate(t.Name, width-2)

	for i, label := range t.Labels {
		if i >= 2 {
			line += theme.LabelStyle(i).Render(" …")
			break
		}
		line += " " + theme.LabelStyle(i).Render("["+label+"]")
	}

	if t.DueDate != nil {
		now := time.Now()
		overdue := t.DueDate.Before(now)
		dueSoon := !overdue && t.DueDate.Before(now.Add(48*time.Hour))
		line += " " + theme.DueStyle(overdue, dueSoon).Render(t.DueDate.Format("Jan 02"))
	}

	if m.grab != nil && t.ID == m.grab.taskID {
		return theme.GrabbedCardStyle.Render(line)
	}
	if listIdx == m.listIdx && cardIdx == m.taskIdx[l.ID] && m.grab == nil {
		return theme.SelectedCardStyle.Render(line)
	}
	return theme.CardStyle.Render(line)
}

func (m Model) renderEmptyState() string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render("No lists yet.\n\nPress N to create one.")
}

func (m Model) columnWidth(count int) int {
	if count == 0 {
		count = 1
	}
	w := m.width / count
	if w < 20 {
		w = 20
	}
	if w > 44 {
		w = 44
	}
	return w
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
