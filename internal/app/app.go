package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/board"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/live"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/session"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/store"
	appsync "github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/sync"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/boardview"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/chatview"
	helpview "github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/help"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/login"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/taskform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewBoard
	ViewChat
	ViewHelp
	ViewTaskForm
)

// requestTimeout bounds each backend call issued from a tea.Cmd.
const requestTimeout = 15 * time.Second

// toastDuration is how long a transient notice stays in the status bar.
const toastDuration = 4 * time.Second

// historyCacheLimit caps how much cached transcript is read back for
// the instant preview when a conversation opens.
const historyCacheLimit = 200

// toastClearMsg removes an expired transient notice.
type toastClearMsg struct{}

// toastShowMsg installs a transient notice from inside a tea.Cmd.
type toastShowMsg struct {
	text string
}

// typingTickMsg re-renders the chat view so expired typing indicators
// disappear without further push traffic.
type typingTickMsg struct{}

// Model is the root Bubble Tea model. It owns the session, the board
// reconciliation state, the chat merger, and routes messages between
// the backend commands and the views.
type Model struct {
	currentView  ViewState
	previousView ViewState

	layout ui.Layout
	keys   *KeyMap
	log    *logrus.Logger

	client     *api.Client
	store      *store.SQLiteStore
	socketURL  string
	sess       *session.Session
	dispatcher *appsync.Dispatcher

	boardState *board.State
	merger     *live.Merger

	project  model.Project
	projects []model.Project
	users    []model.User
	channels []model.Channel

	loginView login.Model
	boardView boardview.Model
	chatView  chatview.Model
	helpView  helpview.Model
	taskForm  taskform.Model

	connected bool
	toast     string
	ready     bool
}

// New creates the root application model.
func New(client *api.Client, s *store.SQLiteStore, socketURL string, typingTTL time.Duration, log *logrus.Logger) Model {
	keys := DefaultKeyMap()

	return Model{
		currentView: ViewLogin,
		keys:        keys,
		log:         log,
		client:      client,
		store:       s,
		socketURL:   socketURL,
		boardState:  board.NewState(log),
		merger:      live.NewMerger(log, live.Config{TypingTTL: typingTTL}),
		loginView:   login.New(80, 24),
		boardView:   boardview.New(keys, 80, 24),
		chatView:    chatview.New(keys, 80, 24),
		helpView:    helpview.New(keys, 80, 24),
		taskForm:    taskform.New(80, 24),
	}
}

// Init tries to resume a stored session before showing the login form.
func (m Model) Init() tea.Cmd {
	return m.resumeSessionCmd()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.boardView.SetSize(w, h)
		m.chatView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		return m.updateActiveView(msg)

	case sessionMsg:
		return m.handleSession(msg)

	case bootstrapMsg:
		return m.handleBootstrap(msg)

	case cachedBoardMsg:
		return m.handleCachedBoard(msg)

	case boardFetchedMsg:
		return m.handleBoardFetched(msg)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case listCreatedMsg:
		return m.handleListCreated(msg)

	case taskCreatedMsg:
		return m.handleTaskCreated(msg)

	case cachedHistoryMsg:
		return m.handleCachedHistory(msg)

	case unreadSeedMsg:
		return m.handleUnreadSeed(msg)

	case historyMsg:
		return m.handleHistory(msg)

	case sentMsg:
		return m.handleSent(msg)

	case appsync.MessageMsg:
		return m.handlePushMessage(msg)

	case appsync.TypingMsg:
		m.merger.OnTyping(msg.Target, msg.SenderID)
		m.refreshChat()
		return m, tea.Batch(
			m.waitForEvent(),
			tea.Tick(4*time.Second, func(time.Time) tea.Msg { return typingTickMsg{} }),
		)

	case appsync.PresenceMsg:
		m.merger.OnPresence(msg.Online)
		m.refreshConversations()
		return m, m.waitForEvent()

	case appsync.ConnectionMsg:
		return m.handleConnection(msg)

	case typingTickMsg:
		m.refreshChat()
		return m, nil

	case toastClearMsg:
		m.toast = ""
		return m, nil

	case toastShowMsg:
		return m, m.setToast(msg.text)

	case login.SubmitMsg:
		return m, m.loginCmd(msg.Email, msg.Password)

	case boardview.MoveTaskMsg,
		boardview.CreateListMsg,
		boardview.RenameListMsg,
		boardview.DeleteListMsg,
		boardview.DeleteTaskMsg,
		boardview.NewTaskRequestMsg,
		boardview.EditTaskRequestMsg:
		return m.handleBoardIntent(msg)

	case taskform.CreatedMsg:
		return m.handleTaskFormCreated(msg)

	case taskform.UpdatedMsg:
		return m.handleTaskFormUpdated(msg)

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case chatview.SelectMsg:
		return m.selectConversation(msg.Target)

	case chatview.SendMsg:
		return m, m.sendMessageCmd(msg.Body)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys intercepts keys that work across views. Printable
// keys are left alone whenever a text input has focus.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		if m.dispatcher != nil {
			m.dispatcher.Stop()
		}
		return m, tea.Quit, true
	}

	switch m.currentView {
	case ViewBoard:
		if m.boardView.InputActive() || m.boardView.GrabActive() {
			return m, nil, false
		}
		switch msg.String() {
		case "q":
			if m.dispatcher != nil {
				m.dispatcher.Stop()
			}
			return m, tea.Quit, true
		case "c":
			m.previousView = m.currentView
			m.currentView = ViewChat
			m.refreshChat()
			m.refreshConversations()
			return m, nil, true
		case "r":
			return m, m.fetchBoardCmd(m.project.ID), true
		case "?":
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil, true
		}

	case ViewChat:
		switch msg.String() {
		case "esc":
			m.currentView = ViewBoard
			return m, nil, true
		case "ctrl+r":
			if m.merger.Phase() == live.PhaseError {
				epoch := m.merger.Retry()
				m.refreshChat()
				return m, m.fetchHistoryCmd(epoch, m.merger.ActiveTarget()), true
			}
		}

	case ViewHelp:
		switch msg.String() {
		case "?", "esc", "q":
			m.currentView = m.previousView
			return m, nil, true
		}
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.connStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusText())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.boardView.View()
	case ViewChat:
		return m.chatView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewTaskForm:
		return m.taskForm.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	title := "Nexus"
	if m.project.Name != "" {
		title += " / " + m.project.Name
	}
	if unread := m.merger.TotalUnread(); unread > 0 {
		title += fmt.Sprintf(" [%d unread]", unread)
	}
	return title
}

func (m Model) connStatus() string {
	if m.connected {
		return "online"
	}
	return "offline"
}

// statusText returns the transient toast when one is active, otherwise
// the per-view keyboard hints.
func (m Model) statusText() string {
	if m.toast != "" {
		return m.toast
	}

	switch m.currentView {
	case ViewBoard:
		if m.boardView.GrabActive() {
			return "h/j/k/l move | space drop | esc cancel"
		}
		return "space grab | n task | N list | e edit | d delete | c chat | r refresh | ? help | q quit"
	case ViewChat:
		return "enter send | tab switch conversation | pgup/pgdn scroll | esc board"
	case ViewHelp:
		return "? close help"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	default:
		return ""
	}
}

// setToast installs a transient status-bar notice.
func (m *Model) setToast(text string) tea.Cmd {
	m.toast = text
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastClearMsg{} })
}

func (m Model) waitForEvent() tea.Cmd {
	if m.dispatcher == nil {
		return nil
	}
	return m.dispatcher.WaitForEvent()
}
