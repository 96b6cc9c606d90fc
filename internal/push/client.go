package push

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// eventBufferSize bounds undelivered events; the reader drops the
	// oldest when the UI falls behind.
	eventBufferSize = 64

	maxReconnectWait = 30 * time.Second
)

// Client maintains the websocket connection to the push channel and
// delivers typed events on Events(). It reconnects with exponential
// backoff until Close is called.
type Client struct {
	url    string
	token  string
	selfID string
	log    *logrus.Logger

	events chan Event
	done   chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
	closed  bool
}

// NewClient creates a push client for the given websocket URL. selfID is
// the authenticated user, used to resolve direct-message conversation
// keys. Call Start to connect.
func NewClient(socketURL, token, selfID string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		url:    socketURL,
		token:  token,
		selfID: selfID,
		log:    log,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// DeriveSocketURL maps the REST base URL to the websocket endpoint.
func DeriveSocketURL(baseURL string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimRight(ws, "/") + "/socket"
}

// Events returns the inbound typed event channel.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Start launches the connection loop. Safe to call once.
func (c *Client) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run()
}

// Close tears the connection down and stops reconnecting. The events
// channel is closed once the reader exits.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		_ = conn.Close()
	}
}

// run dials, reads until the connection drops, and redials with
// exponential backoff until Close.
func (c *Client) run() {
	defer close(c.events)

	attempt := 0
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, err := c.dial()
		if err != nil {
			wait := reconnectWait(attempt)
			attempt++
			c.log.WithError(err).Warnf("push connect failed, retrying in %s", wait)
			select {
			case <-c.done:
				return
			case <-time.After(wait):
			}
			continue
		}

		attempt = 0
		c.setConn(conn)
		c.deliver(StateEvent{Connected: true})
		c.readLoop(conn)
		c.setConn(nil)
		c.deliver(StateEvent{Connected: false})
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	header := map[string][]string{
		"Authorization": {"Bearer " + c.token},
	}
	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// readLoop consumes frames until the connection errors out.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.WithError(err).Warn("push connection lost")
			}
			_ = conn.Close()
			return
		}

		ev, err := decodeEvent(data, c.selfID)
		if err != nil {
			c.log.WithError(err).Warn("dropping undecodable push event")
			continue
		}
		if ev == nil {
			continue
		}
		c.deliver(ev)
	}
}

// deliver queues an event, dropping the oldest pending one when the
// consumer lags.
func (c *Client) deliver(ev Event) {
	for {
		select {
		case <-c.done:
			return
		case c.events <- ev:
			return
		default:
			select {
			case stale := <-c.events:
				c.log.WithField("event", stale.Name()).Warn("event queue full, dropping oldest")
			default:
			}
		}
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func reconnectWait(attempt int) time.Duration {
	// The shift overflows for large attempt counts, so saturate once
	// the doubling passes the ceiling.
	if attempt > 5 {
		return maxReconnectWait
	}
	wait := time.Duration(1<<uint(attempt)) * time.Second
	if wait > maxReconnectWait {
		wait = maxReconnectWait
	}
	return wait
}
