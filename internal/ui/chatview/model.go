package chatview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/keys"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/live"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/theme"
)

// SendMsg is sent when the user submits a chat message body.
type SendMsg struct {
	Body string
}

// SelectMsg is sent when the user switches to another conversation.
type SelectMsg struct {
	Target model.Target
}

// Conversation is one sidebar entry: a channel or a direct peer.
type Conversation struct {
	Target model.Target
	Title  string
	Unread int
	Online bool
}

const sidebarWidth = 28

// Model is the chat view: a conversation sidebar, a message viewport,
// and a compose input. All conversation state is owned by the root
// model and pushed in through setters.
type Model struct {
	keys *keys.KeyMap

	conversations []Conversation
	active        model.Target
	selfID        string
	names         map[string]string

	messages []model.ChatMessage
	phase    live.Phase
	typing   []string

	viewport viewport.Model
	input    textinput.Model

	width  int
	height int
}

// New creates a new chat view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width-sidebarWidth-4, height-4)

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		keys:     k,
		names:    make(map[string]string),
		viewport: vp,
		input:    ti,
		width:    width,
		height:   height,
	}
}

// SetSelf records the authenticated user, used to style own messages.
func (m *Model) SetSelf(userID string) {
	m.selfID = userID
}

// SetNames replaces the user ID to display name mapping.
func (m *Model) SetNames(names map[string]string) {
	m.names = names
}

// SetConversations replaces the sidebar entries.
func (m *Model) SetConversations(convs []Conversation) {
	m.conversations = convs
}

// SetActive marks the selected conversation.
func (m *Model) SetActive(target model.Target) {
	m.active = target
}

// SetMessages replaces the transcript and keeps the view pinned to the
// latest message.
func (m *Model) SetMessages(msgs []model.ChatMessage, phase live.Phase) {
	m.messages = msgs
	m.phase = phase
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// SetTyping replaces the set of user IDs currently typing in the
// active conversation.
func (m *Model) SetTyping(userIDs []string) {
	m.typing = userIDs
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case keyMsg.String() == "enter":
		body := strings.TrimSpace(m.input.Value())
		if body == "" {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return SendMsg{Body: body} }

	case key.Matches(keyMsg, m.keys.NextConversation):
		return m.cycleConversation(1)

	case key.Matches(keyMsg, m.keys.PrevConversation):
		return m.cycleConversation(-1)

	case keyMsg.String() == "pgup" || keyMsg.String() == "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// cycleConversation moves the selection through the sidebar, wrapping
// at either end, and emits a SelectMsg for the new target.
func (m Model) cycleConversation(step int) (Model, tea.Cmd) {
	if len(m.conversations) == 0 {
		return m, nil
	}

	idx := 0
	for i, c := range m.conversations {
		if c.Target == m.active {
			idx = i
			break
		}
	}
	idx = (idx + step + len(m.conversations)) % len(m.conversations)
	target := m.conversations[idx].Target

	return m, func() tea.Msg { return SelectMsg{Target: target} }
}

// View renders the sidebar next to the transcript and compose input.
func (m Model) View() string {
	sidebar := m.renderSidebar()
	main := m.renderMain()
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - sidebarWidth - 4
	m.viewport.Height = height - 4
	m.input.Width = width - sidebarWidth - 8
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderSidebar() string {
	rows := []string{theme.ColumnTitleStyle.Render("Conversations")}

	for _, c := range m.conversations {
		title := truncate(c.Title, sidebarWidth-10)
		if c.Target.Kind == model.TargetChannel {
			title = "#" + title
		} else {
			title = theme.PresenceDot(c.Online) + " " + title
		}

		line := title
		if c.Unread > 0 {
			line += " " + theme.UnreadBadgeStyle.Render(fmt.Sprintf("%d", c.Unread))
		}

		if c.Target == m.active {
			rows = append(rows, theme.SelectedConversationStyle.Render(line))
		} else {
			rows = append(rows, theme.ConversationStyle.Render(line))
		}
	}

	return theme.SidebarStyle.
		Width(sidebarWidth - 2).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderMain() string {
	transcript := m.viewport.View()
	typingLine := m.renderTypingLine()
	input := lipgloss.NewStyle().
		Padding(0, 1).
		Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, transcript, typingLine, input)
}

// renderTranscript formats the active conversation's messages, or a
// placeholder while history is loading. A cached transcript installed
// during the fetch is rendered rather than hidden behind the spinner
// text.
func (m Model) renderTranscript() string {
	switch m.phase {
	case live.PhaseFetching:
		if len(m.messages) == 0 {
			return theme.HelpStyle.Render("Loading history...")
		}
	case live.PhaseError:
		return theme.ToastStyle.Render("Could not load history. Press ctrl+r to retry.")
	}

	if len(m.messages) == 0 {
		return theme.HelpStyle.Render("No messages yet. Say hello.")
	}

	lines := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		lines = append(lines, m.renderMessage(msg))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderMessage(msg model.ChatMessage) string {
	senderStyle := theme.SenderStyle
	if msg.SenderID == m.selfID {
		senderStyle = theme.OwnSenderStyle
	}

	sender := senderStyle.Render(m.displayName(msg.SenderID))
	ts := theme.TimestampStyle.Render(msg.CreatedAt.Local().Format("15:04"))

	body := msg.Body
	if msg.FileURL != "" {
		attachment := theme.HelpStyle.Render("[attachment] " + msg.FileURL)
		if body == "" {
			body = attachment
		} else {
			body += " " + attachment
		}
	}

	return fmt.Sprintf("%s %s  %s", ts, sender, body)
}

func (m Model) renderTypingLine() string {
	if len(m.typing) == 0 {
		return theme.TypingStyle.Render(" ")
	}

	names := make([]string, len(m.typing))
	for i, id := range m.typing {
		names[i] = m.displayName(id)
	}

	var text string
	switch len(names) {
	case 1:
		text = names[0] + " is typing..."
	case 2:
		text = names[0] + " and " + names[1] + " are typing..."
	default:
		text = "Several people are typing..."
	}
	return theme.TypingStyle.Render(" " + text)
}

func (m Model) displayName(userID string) string {
	if name, ok := m.names[userID]; ok && name != "" {
		return name
	}
	return userID
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
