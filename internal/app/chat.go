package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/live"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	appsync "github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/sync"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/chatview"
)

// historyMsg carries a fetched conversation baseline, tagged with the
// epoch it was requested under.
type historyMsg struct {
	epoch  uint64
	target model.Target
	msgs   []model.ChatMessage
	err    error
}

// sentMsg carries the server-acknowledged copy of an outgoing message.
type sentMsg struct {
	msg model.ChatMessage
	err error
}

// cachedHistoryMsg carries the locally cached transcript, rendered
// while the authoritative baseline fetch is still in flight.
type cachedHistoryMsg struct {
	epoch  uint64
	target model.Target
	msgs   []model.ChatMessage
}

// selectConversation switches the active conversation and starts its
// baseline fetch under a fresh epoch. The cached transcript is loaded
// alongside so the view has something to show immediately.
func (m Model) selectConversation(target model.Target) (tea.Model, tea.Cmd) {
	epoch := m.merger.SelectConversation(target)
	m.refreshChat()
	m.refreshConversations()

	return m, tea.Batch(
		m.loadCachedHistoryCmd(epoch, target),
		m.fetchHistoryCmd(epoch, target),
		m.markTargetReadCmd(target),
	)
}

// handleCachedHistory previews the cached transcript, but only while
// the baseline fetch for the same conversation switch is still pending.
// Once the fetch settles the merger owns the display.
func (m Model) handleCachedHistory(msg cachedHistoryMsg) (tea.Model, tea.Cmd) {
	if len(msg.msgs) == 0 || msg.epoch != m.merger.Epoch() || m.merger.Phase() != live.PhaseFetching {
		return m, nil
	}
	m.chatView.SetMessages(msg.msgs, live.PhaseFetching)
	return m, nil
}

// handleHistory settles a baseline fetch. The merger discards stale
// epochs itself; the view just re-reads whatever it decided.
func (m Model) handleHistory(msg historyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.err != nil {
		m.merger.BaselineFailed(msg.epoch, msg.err)
	} else if m.merger.ApplyBaseline(msg.epoch, msg.msgs) {
		cmd = m.cacheHistoryCmd(msg.target, m.merger.Messages())
	}
	m.refreshChat()
	return m, cmd
}

// handleSent merges the acknowledged outgoing message; the later push
// echo is suppressed by identifier de-duplication.
func (m Model) handleSent(msg sentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setToast("Send failed: " + msg.err.Error())
	}

	m.merger.AppendLocal(msg.msg)
	m.refreshChat()
	return m, m.cacheMessageCmd(msg.msg)
}

// handlePushMessage merges one pushed chat message and keeps the local
// history cache in step.
func (m Model) handlePushMessage(msg appsync.MessageMsg) (tea.Model, tea.Cmd) {
	m.merger.OnMessage(msg.Message)
	m.refreshChat()
	m.refreshConversations()

	return m, tea.Batch(
		m.waitForEvent(),
		m.cacheMessageCmd(msg.Message),
	)
}

// refreshChat pushes the merger's current transcript state into the view.
func (m *Model) refreshChat() {
	active := m.merger.ActiveTarget()
	m.chatView.SetActive(active)
	m.chatView.SetMessages(m.merger.Messages(), m.merger.Phase())
	m.chatView.SetTyping(m.merger.TypingUsers(active))
}

// refreshConversations rebuilds the sidebar: channels first, then every
// other user as a direct-message peer.
func (m *Model) refreshConversations() {
	convs := make([]chatview.Conversation, 0, len(m.channels)+len(m.users))

	for _, ch := range m.channels {
		target := model.Target{Kind: model.TargetChannel, ID: ch.ID}
		convs = append(convs, chatview.Conversation{
			Target: target,
			Title:  ch.Name,
			Unread: m.merger.Unread(target),
		})
	}

	selfID := ""
	if m.sess != nil {
		selfID = m.sess.User.ID
	}
	peers := lo.Filter(m.users, func(u model.User, _ int) bool {
		return u.ID != selfID
	})
	for _, u := range peers {
		target := model.Target{Kind: model.TargetDirect, ID: u.ID}
		convs = append(convs, chatview.Conversation{
			Target: target,
			Title:  u.Name,
			Unread: m.merger.Unread(target),
			Online: m.merger.Online(u.ID),
		})
	}

	m.chatView.SetConversations(convs)
}

// loadCachedHistoryCmd reads the conversation's cached transcript.
func (m Model) loadCachedHistoryCmd(epoch uint64, target model.Target) tea.Cmd {
	if target.IsZero() {
		return nil
	}
	s := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msgs, err := s.GetHistory(ctx, target, historyCacheLimit)
		if err != nil {
			log.WithError(err).Warn("reading cached chat history")
			msgs = nil
		}
		return cachedHistoryMsg{epoch: epoch, target: target, msgs: msgs}
	}
}

func (m Model) fetchHistoryCmd(epoch uint64, target model.Target) tea.Cmd {
	if target.IsZero() {
		return nil
	}
	client := m.client
	selfID := ""
	if m.sess != nil {
		selfID = m.sess.User.ID
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msgs, err := client.FetchHistory(ctx, target, selfID)
		return historyMsg{epoch: epoch, target: target, msgs: msgs, err: err}
	}
}

func (m Model) sendMessageCmd(body string) tea.Cmd {
	target := m.merger.ActiveTarget()
	if target.IsZero() || m.merger.Phase() != live.PhaseActive {
		return m.setToastCmd("Select a conversation first.")
	}

	client := m.client
	selfID := m.sess.User.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sent, err := client.SendMessage(ctx, target, body, "", selfID)
		return sentMsg{msg: sent, err: err}
	}
}

// setToastCmd wraps setToast for call sites that only have a value
// receiver available.
func (m Model) setToastCmd(text string) tea.Cmd {
	return func() tea.Msg { return toastShowMsg{text: text} }
}

// cacheHistoryCmd replaces the cached transcript for a conversation.
func (m Model) cacheHistoryCmd(target model.Target, msgs []model.ChatMessage) tea.Cmd {
	s := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := s.ReplaceHistory(ctx, target, msgs); err != nil {
			log.WithError(err).Warn("caching chat history")
		}
		return nil
	}
}

// cacheMessageCmd appends one message to the local history cache.
func (m Model) cacheMessageCmd(msg model.ChatMessage) tea.Cmd {
	s := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := s.AppendMessage(ctx, msg); err != nil {
			log.WithError(err).Warn("caching chat message")
		}
		return nil
	}
}

// markTargetReadCmd clears persisted notifications for a conversation
// the user just opened.
func (m Model) markTargetReadCmd(target model.Target) tea.Cmd {
	if target.IsZero() {
		return nil
	}
	s := m.store
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := s.MarkTargetRead(ctx, target); err != nil {
			log.WithError(err).Warn("marking notifications read")
		}
		return nil
	}
}
