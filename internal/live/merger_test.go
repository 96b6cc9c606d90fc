package live

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

var (
	channelC = model.Target{Kind: model.TargetChannel, ID: "C"}
	channelD = model.Target{Kind: model.TargetChannel, ID: "D"}
	peerEve  = model.Target{Kind: model.TargetDirect, ID: "eve"}
)

func newTestMerger(t *testing.T, cfg Config) *Merger {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewMerger(log, cfg)
}

func msg(id string, target model.Target, at time.Time) model.ChatMessage {
	return model.ChatMessage{
		ID:        id,
		SenderID:  "sender-" + id,
		Body:      "body " + id,
		Target:    target,
		CreatedAt: at,
	}
}

func idsOf(msgs []model.ChatMessage) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func TestDuplicateFromHistoryAndPushAppearsOnce(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)
	require.True(t, m.ApplyBaseline(epoch, []model.ChatMessage{
		msg("m1", channelC, base),
		msg("m2", channelC, base.Add(time.Minute)),
	}))

	// The push channel re-delivers m2, then delivers m3.
	require.Equal(t, MessageDuplicate, m.OnMessage(msg("m2", channelC, base.Add(time.Minute))))
	require.Equal(t, MessageApplied, m.OnMessage(msg("m3", channelC, base.Add(2*time.Minute))))

	require.Equal(t, []string{"m1", "m2", "m3"}, idsOf(m.Messages()))
}

func TestBaselineSortedByTimestampThenID(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)
	// History arrives in arbitrary order; same-timestamp messages are
	// tie-broken by ID for a stable sequence.
	require.True(t, m.ApplyBaseline(epoch, []model.ChatMessage{
		msg("b", channelC, base.Add(time.Second)),
		msg("c", channelC, base),
		msg("a", channelC, base.Add(time.Second)),
		msg("d", channelC, base.Add(2*time.Second)),
	}))

	require.Equal(t, []string{"c", "a", "b", "d"}, idsOf(m.Messages()))
}

func TestEventsDuringFetchAreBufferedAndReplayed(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)

	// Two events race the history fetch; one of them is also part of
	// the fetched history.
	require.Equal(t, MessageBuffered, m.OnMessage(msg("m2", channelC, base.Add(time.Minute))))
	require.Equal(t, MessageBuffered, m.OnMessage(msg("m3", channelC, base.Add(2*time.Minute))))

	require.True(t, m.ApplyBaseline(epoch, []model.ChatMessage{
		msg("m1", channelC, base),
		msg("m2", channelC, base.Add(time.Minute)),
	}))

	require.Equal(t, []string{"m1", "m2", "m3"}, idsOf(m.Messages()))
}

func TestStaleFetchAfterSwitchIsDiscarded(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epochC := m.SelectConversation(channelC)
	epochD := m.SelectConversation(channelD)

	require.True(t, m.ApplyBaseline(epochD, []model.ChatMessage{
		msg("d1", channelD, base),
	}))

	// The fetch for C resolves after the user switched to D.
	require.False(t, m.ApplyBaseline(epochC, []model.ChatMessage{
		msg("c1", channelC, base),
	}))

	require.Equal(t, channelD, m.ActiveTarget())
	require.Equal(t, []string{"d1"}, idsOf(m.Messages()))
}

func TestMessagesForOtherConversationsOnlyNotify(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)
	require.True(t, m.ApplyBaseline(epoch, nil))

	require.Equal(t, MessageNotified, m.OnMessage(msg("x1", channelD, base)))
	require.Equal(t, MessageNotified, m.OnMessage(msg("x2", channelD, base)))
	require.Equal(t, MessageNotified, m.OnMessage(msg("x3", peerEve, base)))

	require.Empty(t, m.Messages())
	require.Equal(t, 2, m.Unread(channelD))
	require.Equal(t, 1, m.Unread(peerEve))
	require.Equal(t, 3, m.TotalUnread())

	m.ClearUnread(channelD)
	require.Equal(t, 1, m.TotalUnread())
}

func TestSelectingConversationClearsItsUnread(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m.SelectConversation(channelC)
	m.OnMessage(msg("x1", channelD, base))
	require.Equal(t, 1, m.Unread(channelD))

	m.SelectConversation(channelD)
	require.Equal(t, 0, m.Unread(channelD))
}

func TestSeededUnreadSurvivesUntilSelected(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m.SelectConversation(channelC)
	m.SeedUnread(map[model.Target]int{
		channelC: 4, // active conversation, seed must not resurrect it
		channelD: 3,
		peerEve:  1,
	})

	require.Equal(t, 0, m.Unread(channelC))
	require.Equal(t, 3, m.Unread(channelD))
	require.Equal(t, 1, m.Unread(peerEve))
	require.Equal(t, 4, m.TotalUnread())

	// Live traffic keeps counting on top of the seed.
	m.OnMessage(msg("x1", channelD, base))
	require.Equal(t, 4, m.Unread(channelD))

	// A seed applied after counters have grown never shrinks them.
	m.SeedUnread(map[model.Target]int{channelD: 2})
	require.Equal(t, 4, m.Unread(channelD))

	m.SelectConversation(channelD)
	require.Equal(t, 0, m.Unread(channelD))
	require.Equal(t, 1, m.TotalUnread())
}

func TestFetchFailureBuffersUnderCapUntilRetry(t *testing.T) {
	m := newTestMerger(t, Config{BufferCap: 2})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)
	m.BaselineFailed(epoch, errors.New("gateway timeout"))
	require.Equal(t, PhaseError, m.Phase())
	require.Error(t, m.Err())

	// Buffering continues after the failure, bounded by the cap:
	// the oldest event is dropped on overflow.
	for i := 0; i < 4; i++ {
		m.OnMessage(msg(fmt.Sprintf("m%d", i), channelC, base.Add(time.Duration(i)*time.Second)))
	}

	retryEpoch := m.Retry()
	require.Equal(t, PhaseFetching, m.Phase())
	require.True(t, m.ApplyBaseline(retryEpoch, nil))

	require.Equal(t, []string{"m2", "m3"}, idsOf(m.Messages()))
	require.NoError(t, m.Err())
}

func TestLocalEchoDeduplicatesServerPush(t *testing.T) {
	m := newTestMerger(t, Config{})
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	epoch := m.SelectConversation(channelC)
	require.True(t, m.ApplyBaseline(epoch, nil))

	sent := msg("local-1", channelC, base)
	require.Equal(t, MessageApplied, m.AppendLocal(sent))
	require.Equal(t, MessageDuplicate, m.OnMessage(sent))
	require.Equal(t, []string{"local-1"}, idsOf(m.Messages()))
}

func TestTypingFlagExpiresAndRestarts(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMerger(t, Config{
		TypingTTL: 3 * time.Second,
		Now:       func() time.Time { return now },
	})

	m.OnTyping(channelC, "alice")
	require.Equal(t, []string{"alice"}, m.TypingUsers(channelC))
	require.Empty(t, m.TypingUsers(channelD))

	// A second event restarts the timer.
	now = now.Add(2 * time.Second)
	m.OnTyping(channelC, "alice")
	now = now.Add(2 * time.Second)
	require.Equal(t, []string{"alice"}, m.TypingUsers(channelC))

	now = now.Add(3 * time.Second)
	require.Empty(t, m.TypingUsers(channelC))
}

func TestTypingTracksSendersIndependently(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMerger(t, Config{
		TypingTTL: 3 * time.Second,
		Now:       func() time.Time { return now },
	})

	m.OnTyping(channelC, "bob")
	m.OnTyping(channelC, "alice")
	require.Equal(t, []string{"alice", "bob"}, m.TypingUsers(channelC))
}

func TestPresenceReplacedWholesale(t *testing.T) {
	m := newTestMerger(t, Config{})

	m.OnPresence([]string{"u1", "u2"})
	require.True(t, m.Online("u1"))
	require.Equal(t, []string{"u1", "u2"}, m.Presence())

	m.OnPresence([]string{"u3"})
	require.False(t, m.Online("u1"))
	require.Equal(t, []string{"u3"}, m.Presence())
}
