package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/chatview"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/tests/testutil"
)

var generalChannel = model.Target{Kind: model.TargetChannel, ID: "ch1"}

func newTestModel(t *testing.T) Model {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	client := api.NewClient("http://127.0.0.1:1", "")
	return New(client, testutil.NewTestStore(t), "ws://127.0.0.1:1/socket", 3*time.Second, log)
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	root, ok := next.(Model)
	require.True(t, ok)
	return root
}

func chatMsg(id, body string, at time.Time) model.ChatMessage {
	return model.ChatMessage{
		ID:        id,
		SenderID:  "u2",
		Body:      body,
		Target:    generalChannel,
		CreatedAt: at,
	}
}

func TestCachedTranscriptShownWhileBaselineFetches(t *testing.T) {
	m := newTestModel(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, m.store.AppendMessage(context.Background(), chatMsg("m1", "cached hello", base)))

	m = applyMsg(t, m, chatview.SelectMsg{Target: generalChannel})

	// Run the cache read the conversation switch scheduled.
	msg := m.loadCachedHistoryCmd(m.merger.Epoch(), generalChannel)()
	cached, ok := msg.(cachedHistoryMsg)
	require.True(t, ok)
	require.Len(t, cached.msgs, 1)

	m = applyMsg(t, m, cached)
	require.Contains(t, m.chatView.View(), "cached hello")
}

func TestStaleCachedTranscriptIsDiscarded(t *testing.T) {
	m := newTestModel(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m = applyMsg(t, m, chatview.SelectMsg{Target: generalChannel})
	staleEpoch := m.merger.Epoch()

	other := model.Target{Kind: model.TargetChannel, ID: "ch2"}
	m = applyMsg(t, m, chatview.SelectMsg{Target: other})

	m = applyMsg(t, m, cachedHistoryMsg{
		epoch:  staleEpoch,
		target: generalChannel,
		msgs:   []model.ChatMessage{chatMsg("m1", "stale cached", base)},
	})
	require.NotContains(t, m.chatView.View(), "stale cached")
}

func TestServerBaselineReplacesCachedTranscript(t *testing.T) {
	m := newTestModel(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m = applyMsg(t, m, chatview.SelectMsg{Target: generalChannel})
	epoch := m.merger.Epoch()

	m = applyMsg(t, m, cachedHistoryMsg{
		epoch:  epoch,
		target: generalChannel,
		msgs:   []model.ChatMessage{chatMsg("m1", "cached copy", base)},
	})

	m = applyMsg(t, m, historyMsg{
		epoch:  epoch,
		target: generalChannel,
		msgs:   []model.ChatMessage{chatMsg("m2", "server copy", base.Add(time.Minute))},
	})

	view := m.chatView.View()
	require.Contains(t, view, "server copy")
	require.NotContains(t, view, "cached copy")
}

func TestPersistedNotificationsSeedUnreadCounts(t *testing.T) {
	m := newTestModel(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, m.store.CreateNotification(ctx, model.Notification{
			Target:   generalChannel,
			SenderID: "u2",
			Message:  "new message",
		}))
	}
	require.NoError(t, m.store.CreateNotification(ctx, model.Notification{
		Target:   model.Target{Kind: model.TargetDirect, ID: "u3"},
		SenderID: "u3",
		Message:  "new message",
	}))

	msg := m.loadUnreadCmd()()
	seed, ok := msg.(unreadSeedMsg)
	require.True(t, ok)
	require.Equal(t, 2, seed.counts[generalChannel])

	m = applyMsg(t, m, seed)
	require.Equal(t, 2, m.merger.Unread(generalChannel))
	require.Equal(t, 3, m.merger.TotalUnread())
	require.Contains(t, m.headerTitle(), "[3 unread]")
}
