package chatview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/keys"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/live"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

func newTestView() Model {
	return New(keys.DefaultKeyMap(), 100, 30)
}

func transcriptMsg(id, body string) model.ChatMessage {
	return model.ChatMessage{
		ID:        id,
		SenderID:  "u2",
		Body:      body,
		Target:    model.Target{Kind: model.TargetChannel, ID: "ch1"},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestTranscriptShowsPlaceholderWhileFetching(t *testing.T) {
	m := newTestView()
	m.SetMessages(nil, live.PhaseFetching)
	require.Contains(t, m.renderTranscript(), "Loading history")
}

func TestTranscriptRendersCachedMessagesWhileFetching(t *testing.T) {
	m := newTestView()
	m.SetMessages([]model.ChatMessage{transcriptMsg("m1", "cached hello")}, live.PhaseFetching)

	out := m.renderTranscript()
	require.Contains(t, out, "cached hello")
	require.NotContains(t, out, "Loading history")
}

func TestTranscriptErrorHintNamesTheRetryKey(t *testing.T) {
	m := newTestView()
	m.SetMessages(nil, live.PhaseError)
	require.Contains(t, m.renderTranscript(), "ctrl+r")
}
