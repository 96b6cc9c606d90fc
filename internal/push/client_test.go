package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// pushServer is a minimal websocket endpoint that records the dial
// headers and replays canned frames to the connected client.
type pushServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu         sync.Mutex
	authHeader string
	conns      []*websocket.Conn
}

func newPushServer(frames ...string) *pushServer {
	ps := &pushServer{}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.authHeader = r.Header.Get("Authorization")
		ps.mu.Unlock()

		conn, err := ps.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ps.mu.Lock()
		ps.conns = append(ps.conns, conn)
		ps.mu.Unlock()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}

		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	return ps
}

// closeConns tears down every accepted connection. Closing the
// httptest server alone is not enough: upgraded websocket connections
// are hijacked and outlive srv.Close.
func (ps *pushServer) closeConns() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, conn := range ps.conns {
		_ = conn.Close()
	}
	ps.conns = nil
}

func (ps *pushServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ps.srv.URL, "http")
}

func (ps *pushServer) auth() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.authHeader
}

func waitEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for push event")
		return nil
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestClientDeliversDecodedEvents(t *testing.T) {
	ps := newPushServer(
		`{"event":"newMessage","payload":{"_id":"m1","sender":"u2","channel":"ch1","text":"hi","createdAt":"2024-05-01T10:00:00Z"}}`,
		`{"event":"presence","payload":{"online":["u2","u3"]}}`,
	)
	defer ps.srv.Close()

	c := NewClient(ps.wsURL(), "token-abc", "u1", quietLogger())
	c.Start()
	defer c.Close()

	state, ok := waitEvent(t, c).(StateEvent)
	require.True(t, ok)
	require.True(t, state.Connected)

	msg, ok := waitEvent(t, c).(MessageEvent)
	require.True(t, ok)
	require.Equal(t, "m1", msg.Message.ID)
	require.Equal(t, model.Target{Kind: model.TargetChannel, ID: "ch1"}, msg.Message.Target)

	presence, ok := waitEvent(t, c).(PresenceEvent)
	require.True(t, ok)
	require.Equal(t, []string{"u2", "u3"}, presence.Online)

	require.Equal(t, "Bearer token-abc", ps.auth())
}

func TestClientSkipsUnknownAndMalformedFrames(t *testing.T) {
	ps := newPushServer(
		`{"event":"somethingElse","payload":{}}`,
		`not even json`,
		`{"event":"userTyping","payload":{"sender":"u2","channel":"ch1"}}`,
	)
	defer ps.srv.Close()

	c := NewClient(ps.wsURL(), "t", "u1", quietLogger())
	c.Start()
	defer c.Close()

	_, ok := waitEvent(t, c).(StateEvent)
	require.True(t, ok)

	typing, ok := waitEvent(t, c).(TypingEvent)
	require.True(t, ok)
	require.Equal(t, "u2", typing.SenderID)
	require.Equal(t, model.Target{Kind: model.TargetChannel, ID: "ch1"}, typing.Target)
}

func TestReconnectWaitStaysBounded(t *testing.T) {
	require.Equal(t, time.Second, reconnectWait(0))
	require.Equal(t, 2*time.Second, reconnectWait(1))
	require.Equal(t, 8*time.Second, reconnectWait(3))
	require.Equal(t, maxReconnectWait, reconnectWait(5))

	// Long outages push the attempt counter far past the point where a
	// naive doubling would wrap around to zero.
	for _, attempt := range []int{6, 31, 62, 63, 64, 100} {
		wait := reconnectWait(attempt)
		require.Greater(t, wait, time.Duration(0), "attempt %d", attempt)
		require.LessOrEqual(t, wait, maxReconnectWait, "attempt %d", attempt)
	}
}

func TestClientReportsDisconnect(t *testing.T) {
	ps := newPushServer(
		`{"event":"presence","payload":{"online":[]}}`,
	)
	defer ps.srv.Close()

	c := NewClient(ps.wsURL(), "t", "u1", quietLogger())
	c.Start()
	defer c.Close()

	_, ok := waitEvent(t, c).(StateEvent)
	require.True(t, ok)
	_, ok = waitEvent(t, c).(PresenceEvent)
	require.True(t, ok)

	ps.closeConns()

	state, ok := waitEvent(t, c).(StateEvent)
	require.True(t, ok)
	require.False(t, state.Connected)
}
