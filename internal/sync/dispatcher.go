package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/push"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/store"
)

// MessageMsg is a tea.Msg carrying a chat message pushed by the server.
type MessageMsg struct {
	Message model.ChatMessage
}

// TypingMsg is a tea.Msg carrying a typing indicator pushed by the server.
type TypingMsg struct {
	Target   model.Target
	SenderID string
}

// PresenceMsg is a tea.Msg carrying the full set of online user IDs.
type PresenceMsg struct {
	Online []string
}

// ConnectionMsg is a tea.Msg sent when the push connection state changes.
type ConnectionMsg struct {
	Connected bool
}

// notifyTimeout bounds the notification write for a single pushed message.
const notifyTimeout = 5 * time.Second

// Dispatcher drains the push client's event stream and surfaces each
// event to the Bubble Tea runtime as a typed message. It also records a
// notification for every pushed chat message so unread state survives
// restarts.
type Dispatcher struct {
	client *push.Client
	store  *store.SQLiteStore
	log    *logrus.Logger

	msgCh  chan tea.Msg
	stopCh chan struct{}

	mu      gosync.Mutex
	running bool
}

// NewDispatcher creates a Dispatcher over the given push client. The
// store may be nil, in which case notifications are not persisted.
func NewDispatcher(client *push.Client, s *store.SQLiteStore, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		store:  s,
		log:    log,
		msgCh:  make(chan tea.Msg, 64),
		stopCh: make(chan struct{}),
	}
}

// Start connects the push client, launches the drain goroutine, and
// returns a tea.Cmd subscribed to the dispatched message stream.
func (d *Dispatcher) Start() tea.Cmd {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return d.waitForMsg()
	}
	d.running = true
	d.mu.Unlock()

	d.client.Start()
	go d.drain()

	return d.waitForMsg()
}

// Stop halts the drain goroutine and closes the push connection.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	d.running = false

	close(d.stopCh)
	d.client.Close()
}

// WaitForEvent returns a tea.Cmd that waits for the next dispatched
// message. Call it again after processing each message to keep the
// subscription alive.
func (d *Dispatcher) WaitForEvent() tea.Cmd {
	return d.waitForMsg()
}

// drain reads decoded push events until the client's channel closes or
// Stop is called, converting each into a tea.Msg.
func (d *Dispatcher) drain() {
	for {
		select {
		case <-d.stopCh:
			return
		case ev, ok := <-d.client.Events():
			if !ok {
				return
			}
			d.dispatch(ev)
		}
	}
}

func (d *Dispatcher) dispatch(ev push.Event) {
	switch e := ev.(type) {
	case push.MessageEvent:
		d.recordNotification(e.Message)
		d.send(MessageMsg{Message: e.Message})
	case push.TypingEvent:
		d.send(TypingMsg{Target: e.Target, SenderID: e.SenderID})
	case push.PresenceEvent:
		d.send(PresenceMsg{Online: e.Online})
	case push.StateEvent:
		d.send(ConnectionMsg{Connected: e.Connected})
	default:
		d.log.WithField("event", fmt.Sprintf("%T", ev)).Debug("dropping unhandled push event")
	}
}

// recordNotification persists an unread notification for a pushed
// message. Failures are logged and otherwise ignored; the in-memory
// unread counters still update through the merge layer.
func (d *Dispatcher) recordNotification(msg model.ChatMessage) {
	if d.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err := d.store.CreateNotification(ctx, model.Notification{
		Target:   msg.Target,
		SenderID: msg.SenderID,
		Message:  msg.Body,
	})
	if err != nil {
		d.log.WithError(err).Warn("failed to persist notification")
	}
}

// send forwards a message without blocking. If the UI has fallen far
// enough behind to fill the buffer, the oldest pending message is
// dropped in favor of the new one.
func (d *Dispatcher) send(msg tea.Msg) {
	select {
	case d.msgCh <- msg:
	default:
		select {
		case <-d.msgCh:
		default:
		}
		select {
		case d.msgCh <- msg:
		default:
		}
	}
}

// waitForMsg returns a tea.Cmd that blocks until the next dispatched
// message is available.
func (d *Dispatcher) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-d.msgCh
		if !ok {
			return nil
		}
		return msg
	}
}
