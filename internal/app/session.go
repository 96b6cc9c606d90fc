package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/push"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/session"
	appsync "github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/sync"
)

// sessionMsg carries the outcome of a resume or login attempt.
type sessionMsg struct {
	sess *session.Session
	err  error
}

// bootstrapMsg carries the initial directory data fetched after login.
type bootstrapMsg struct {
	projects []model.Project
	users    []model.User
	channels []model.Channel
	online   []string
	err      error
}

// resumeSessionCmd restores a stored session, if one exists.
func (m Model) resumeSessionCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sess, err := session.Resume(ctx, client)
		return sessionMsg{sess: sess, err: err}
	}
}

// loginCmd authenticates with the submitted credentials.
func (m Model) loginCmd(email, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sess, err := session.Login(ctx, client, email, password)
		return sessionMsg{sess: sess, err: err}
	}
}

// handleSession processes a resume or login outcome. A nil session with
// no error means there was nothing to resume; show the login form.
func (m Model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.currentView = ViewLogin
		return m, m.loginView.SetError(loginErrorText(msg.err))
	}
	if msg.sess == nil {
		m.currentView = ViewLogin
		return m, m.loginView.Start()
	}

	m.sess = msg.sess
	m.chatView.SetSelf(msg.sess.User.ID)
	m.currentView = ViewBoard

	pushClient := push.NewClient(m.socketURL, msg.sess.Token, msg.sess.User.ID, m.log)
	m.dispatcher = appsync.NewDispatcher(pushClient, m.store, m.log)

	return m, tea.Batch(
		m.dispatcher.Start(),
		m.loadUnreadCmd(),
		m.bootstrapCmd(),
	)
}

// unreadSeedMsg carries per-conversation unread counts rebuilt from
// the notifications persisted by earlier runs.
type unreadSeedMsg struct {
	counts map[model.Target]int
}

// loadUnreadCmd tallies persisted unread notifications so badge counts
// survive a restart.
func (m Model) loadUnreadCmd() tea.Cmd {
	s := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		notes, err := s.GetUnreadNotifications(ctx)
		if err != nil {
			log.WithError(err).Warn("reading unread notifications")
			return unreadSeedMsg{}
		}
		counts := make(map[model.Target]int, len(notes))
		for _, n := range notes {
			counts[n.Target]++
		}
		return unreadSeedMsg{counts: counts}
	}
}

func (m Model) handleUnreadSeed(msg unreadSeedMsg) (tea.Model, tea.Cmd) {
	if len(msg.counts) == 0 {
		return m, nil
	}
	m.merger.SeedUnread(msg.counts)
	m.refreshConversations()
	return m, nil
}

func loginErrorText(err error) string {
	if api.IsAuth(err) {
		return "Invalid email or password."
	}
	return "Sign-in failed: " + err.Error()
}

// bootstrapCmd fetches the directory data every view depends on:
// projects, the user roster, channels, and the current presence set.
func (m Model) bootstrapCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		projects, err := client.FetchProjects(ctx)
		if err != nil {
			return bootstrapMsg{err: err}
		}
		users, err := client.FetchUsers(ctx)
		if err != nil {
			return bootstrapMsg{err: err}
		}
		channels, err := client.FetchChannels(ctx)
		if err != nil {
			return bootstrapMsg{err: err}
		}
		online, err := client.FetchPresence(ctx)
		if err != nil {
			// Presence is cosmetic; continue without it.
			online = nil
		}

		return bootstrapMsg{
			projects: projects,
			users:    users,
			channels: channels,
			online:   online,
		}
	}
}

// handleBootstrap installs the directory data and kicks off the board
// load for the first project: cached copy first for an instant render,
// then the authoritative fetch.
func (m Model) handleBootstrap(msg bootstrapMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setToast("Could not load workspace: " + msg.err.Error())
	}

	m.projects = msg.projects
	m.users = msg.users
	m.channels = msg.channels
	m.merger.OnPresence(msg.online)

	names := make(map[string]string, len(msg.users))
	for _, u := range msg.users {
		names[u.ID] = u.Name
	}
	m.chatView.SetNames(names)
	m.taskForm.SetMembers(msg.users)
	m.refreshConversations()

	if len(msg.projects) == 0 {
		return m, m.setToast("No projects available for this account.")
	}
	m.project = msg.projects[0]

	return m, tea.Batch(
		m.loadCachedBoardCmd(m.project.ID),
		m.fetchBoardCmd(m.project.ID),
	)
}

// handleConnection reacts to push connect and disconnect transitions.
// A reconnect may have missed events, so the board is refetched and the
// active conversation baseline is restarted.
func (m Model) handleConnection(msg appsync.ConnectionMsg) (tea.Model, tea.Cmd) {
	wasConnected := m.connected
	m.connected = msg.Connected

	cmds := []tea.Cmd{m.waitForEvent()}

	if msg.Connected && !wasConnected && m.sess != nil && m.project.ID != "" {
		cmds = append(cmds, m.fetchBoardCmd(m.project.ID))
		if active := m.merger.ActiveTarget(); !active.IsZero() {
			epoch := m.merger.SelectConversation(active)
			m.refreshChat()
			cmds = append(cmds, m.fetchHistoryCmd(epoch, active))
		}
	}

	return m, tea.Batch(cmds...)
}
