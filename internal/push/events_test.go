package push

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

func TestDecodeChannelMessageEvent(t *testing.T) {
	frame := []byte(`{
		"event": "newMessage",
		"payload": {
			"_id": "m1",
			"sender": "u2",
			"channel": "ch-general",
			"text": "hello",
			"createdAt": "2024-05-01T10:00:00Z"
		}
	}`)

	ev, err := decodeEvent(frame, "self-1")
	require.NoError(t, err)

	msgEv, ok := ev.(MessageEvent)
	require.True(t, ok)
	require.Equal(t, "m1", msgEv.Message.ID)
	require.Equal(t, model.Target{Kind: model.TargetChannel, ID: "ch-general"}, msgEv.Message.Target)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), msgEv.Message.CreatedAt)
}

func TestDecodeDirectMessageResolvesPeer(t *testing.T) {
	inbound := []byte(`{
		"event": "newMessage",
		"payload": {"_id": "m1", "sender": "peer-9", "receiver": "self-1", "text": "hi"}
	}`)
	echo := []byte(`{
		"event": "newMessage",
		"payload": {"_id": "m2", "sender": "self-1", "receiver": "peer-9", "text": "hi back"}
	}`)

	want := model.Target{Kind: model.TargetDirect, ID: "peer-9"}

	ev, err := decodeEvent(inbound, "self-1")
	require.NoError(t, err)
	require.Equal(t, want, ev.(MessageEvent).Message.Target)

	ev, err = decodeEvent(echo, "self-1")
	require.NoError(t, err)
	require.Equal(t, want, ev.(MessageEvent).Message.Target)
}

func TestDecodeTypingEvent(t *testing.T) {
	frame := []byte(`{
		"event": "userTyping",
		"payload": {"sender": "u2", "channel": "ch-general"}
	}`)

	ev, err := decodeEvent(frame, "self-1")
	require.NoError(t, err)

	typing, ok := ev.(TypingEvent)
	require.True(t, ok)
	require.Equal(t, "u2", typing.SenderID)
	require.Equal(t, model.Target{Kind: model.TargetChannel, ID: "ch-general"}, typing.Target)
}

func TestDecodePresenceEvent(t *testing.T) {
	frame := []byte(`{
		"event": "presence",
		"payload": {"online": ["u1", "u3"]}
	}`)

	ev, err := decodeEvent(frame, "self-1")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u3"}, ev.(PresenceEvent).Online)
}

func TestDecodeUnknownEventIsSkipped(t *testing.T) {
	ev, err := decodeEvent([]byte(`{"event": "callRinging", "payload": {}}`), "self-1")
	require.NoError(t, err)
	require.Nil(t, ev)
}

func TestDecodeMalformedFrameErrors(t *testing.T) {
	_, err := decodeEvent([]byte(`{"event": "newMessage", "payload": "not an object"}`), "self-1")
	require.Error(t, err)
}

func TestDeriveSocketURL(t *testing.T) {
	require.Equal(t, "ws://localhost:5000/socket", DeriveSocketURL("http://localhost:5000"))
	require.Equal(t, "wss://collab.example.com/socket", DeriveSocketURL("https://collab.example.com/"))
}
