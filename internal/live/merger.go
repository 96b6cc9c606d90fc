package live

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// Phase is the per-conversation state of the merger.
type Phase int

const (
	// PhaseIdle means no conversation is selected.
	PhaseIdle Phase = iota

	// PhaseFetching means a conversation is selected and its baseline
	// history fetch is in flight. Push events are buffered.
	PhaseFetching

	// PhaseActive means the baseline is displayed and push events are
	// merged directly into the sequence.
	PhaseActive

	// PhaseError means the baseline fetch failed. The conversation
	// stays un-rendered with an error indicator; buffering continues
	// (capped) until a retry.
	PhaseError
)

// MessageOutcome reports what the merger did with an incoming message.
type MessageOutcome int

const (
	// MessageApplied: appended to the active conversation's sequence.
	MessageApplied MessageOutcome = iota

	// MessageDuplicate: already present, dropped.
	MessageDuplicate

	// MessageBuffered: held until the in-flight baseline resolves.
	MessageBuffered

	// MessageNotified: targets another conversation; only the unread
	// counter moved.
	MessageNotified
)

// Config tunes the merger. Zero values pick the defaults.
type Config struct {
	// TypingTTL is how long a typing flag lives after the last event.
	TypingTTL time.Duration

	// BufferCap bounds the number of events held while a baseline
	// fetch is in flight. Overflow drops the oldest buffered event.
	BufferCap int

	// Now is the clock, injectable for tests.
	Now func() time.Time
}

const (
	defaultTypingTTL = 3 * time.Second
	defaultBufferCap = 256
)

// typingKey identifies one sender's typing flag in one conversation.
type typingKey struct {
	target model.Target
	sender string
}

// Merger owns the chat sequence for the active conversation and the
// ephemeral signals around it (typing flags, unread counters, presence).
// All methods are synchronous and must be called from a single
// goroutine (the UI event loop).
type Merger struct {
	log *logrus.Logger
	cfg Config

	phase    Phase
	active   model.Target
	epoch    uint64
	err      error
	messages []model.ChatMessage
	buffer   []model.ChatMessage
	unread   map[model.Target]int
	typing   map[typingKey]time.Time
	presence map[string]struct{}
}

// NewMerger creates an idle merger.
func NewMerger(log *logrus.Logger, cfg Config) *Merger {
	if log == nil {
		log = logrus.New()
	}
	if cfg.TypingTTL <= 0 {
		cfg.TypingTTL = defaultTypingTTL
	}
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = defaultBufferCap
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Merger{
		log:      log,
		cfg:      cfg,
		unread:   make(map[model.Target]int),
		typing:   make(map[typingKey]time.Time),
		presence: make(map[string]struct{}),
	}
}

// Phase returns the current conversation phase.
func (m *Merger) Phase() Phase { return m.phase }

// ActiveTarget returns the currently selected conversation.
func (m *Merger) ActiveTarget() model.Target { return m.active }

// Err returns the baseline fetch error, if the merger is in PhaseError.
func (m *Merger) Err() error { return m.err }

// Epoch returns the token of the most recent conversation switch.
func (m *Merger) Epoch() uint64 { return m.epoch }

// SelectConversation switches the active conversation and returns the
// epoch token the caller must pass back with the baseline fetch result.
// Any result carrying an older epoch is discarded, so a stale fetch that
// resolves after the user has switched away cannot corrupt the display.
func (m *Merger) SelectConversation(target model.Target) uint64 {
	m.epoch++
	m.active = target
	m.err = nil
	m.messages = nil
	m.buffer = nil
	if target.IsZero() {
		m.phase = PhaseIdle
		return m.epoch
	}
	m.phase = PhaseFetching
	delete(m.unread, target)
	return m.epoch
}

// Retry restarts the baseline fetch after a failure, keeping whatever
// events were buffered in the meantime. Returns the new epoch token.
func (m *Merger) Retry() uint64 {
	if m.active.IsZero() {
		return m.epoch
	}
	m.epoch++
	m.err = nil
	m.phase = PhaseFetching
	return m.epoch
}

// ApplyBaseline installs the REST-fetched history for the conversation
// the given epoch belongs to, then re-applies buffered push events with
// identifier de-duplication. A stale epoch is discarded. Reports whether
// the baseline was applied.
func (m *Merger) ApplyBaseline(epoch uint64, history []model.ChatMessage) bool {
	if epoch != m.epoch || (m.phase != PhaseFetching && m.phase != PhaseError) {
		m.log.WithFields(logrus.Fields{
			"epoch":   epoch,
			"current": m.epoch,
		}).Debug("discarding stale baseline")
		return false
	}

	seq := make([]model.ChatMessage, len(history))
	copy(seq, history)
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Before(seq[j])
	})

	seen := make(map[string]struct{}, len(seq))
	deduped := seq[:0]
	for _, msg := range seq {
		if _, dup := seen[msg.ID]; dup {
			continue
		}
		seen[msg.ID] = struct{}{}
		deduped = append(deduped, msg)
	}
	m.messages = deduped

	for _, msg := range m.buffer {
		if _, dup := seen[msg.ID]; dup {
			continue
		}
		seen[msg.ID] = struct{}{}
		m.messages = append(m.messages, msg)
	}
	m.buffer = nil
	m.err = nil
	m.phase = PhaseActive
	return true
}

// BaselineFailed records a failed history fetch. Stale epochs are
// ignored. The conversation shows an error state; events keep buffering
// under the cap until Retry succeeds.
func (m *Merger) BaselineFailed(epoch uint64, err error) {
	if epoch != m.epoch || m.phase != PhaseFetching {
		return
	}
	m.phase = PhaseError
	m.err = err
	m.log.WithError(err).Warn("chat baseline fetch failed")
}

// OnMessage merges one incoming push message. Messages for the active
// conversation are appended in arrival order (the transport preserves
// per-channel send order) with duplicate suppression; messages for other
// conversations only move their unread counter.
func (m *Merger) OnMessage(msg model.ChatMessage) MessageOutcome {
	if msg.Target != m.active || m.phase == PhaseIdle {
		m.unread[msg.Target]++
		return MessageNotified
	}

	switch m.phase {
	case PhaseFetching, PhaseError:
		if m.contains(m.buffer, msg.ID) {
			return MessageDuplicate
		}
		if len(m.buffer) >= m.cfg.BufferCap {
			m.log.WithField("target", fmt.Sprintf("%s:%s", msg.Target.Kind, msg.Target.ID)).
				Warn("event buffer full, dropping oldest")
			m.buffer = m.buffer[1:]
		}
		m.buffer = append(m.buffer, msg)
		return MessageBuffered
	default:
		if m.contains(m.messages, msg.ID) {
			return MessageDuplicate
		}
		m.messages = append(m.messages, msg)
		return MessageApplied
	}
}

// AppendLocal adds a message the user just sent, before the server echo
// arrives. The echo is suppressed later by identifier de-duplication.
func (m *Merger) AppendLocal(msg model.ChatMessage) MessageOutcome {
	return m.OnMessage(msg)
}

// OnTyping records a typing event. A repeat event for the same
// (conversation, sender) restarts the timer.
func (m *Merger) OnTyping(target model.Target, senderID string) {
	m.typing[typingKey{target: target, sender: senderID}] = m.cfg.Now().Add(m.cfg.TypingTTL)
}

// OnPresence replaces the online-user set wholesale.
func (m *Merger) OnPresence(online []string) {
	next := make(map[string]struct{}, len(online))
	for _, id := range online {
		next[id] = struct{}{}
	}
	m.presence = next
}

// Messages returns a copy of the active conversation's sequence.
func (m *Merger) Messages() []model.ChatMessage {
	out := make([]model.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// TypingUsers returns the senders with a live typing flag for the given
// conversation, pruning expired flags.
func (m *Merger) TypingUsers(target model.Target) []string {
	now := m.cfg.Now()
	var users []string
	for key, deadline := range m.typing {
		if !deadline.After(now) {
			delete(m.typing, key)
			continue
		}
		if key.target == target {
			users = append(users, key.sender)
		}
	}
	sort.Strings(users)
	return users
}

// Online reports whether the given user is in the current presence set.
func (m *Merger) Online(userID string) bool {
	_, ok := m.presence[userID]
	return ok
}

// Presence returns the sorted online-user set.
func (m *Merger) Presence() []string {
	out := make([]string, 0, len(m.presence))
	for id := range m.presence {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Unread returns the unread counter for a conversation.
func (m *Merger) Unread(target model.Target) int {
	return m.unread[target]
}

// TotalUnread sums unread counters across all conversations.
func (m *Merger) TotalUnread() int {
	n := 0
	for _, c := range m.unread {
		n += c
	}
	return n
}

// ClearUnread resets the unread counter for a conversation.
func (m *Merger) ClearUnread(target model.Target) {
	delete(m.unread, target)
}

// SeedUnread installs persisted unread counts, typically at startup
// before any push events arrive. Counters that have already grown past
// the seed are left alone.
func (m *Merger) SeedUnread(counts map[model.Target]int) {
	for target, n := range counts {
		if target == m.active {
			continue
		}
		if n > m.unread[target] {
			m.unread[target] = n
		}
	}
}

func (m *Merger) contains(seq []model.ChatMessage, id string) bool {
	for i := range seq {
		if seq[i].ID == id {
			return true
		}
	}
	return false
}
