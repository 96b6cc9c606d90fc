package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/tests/testutil"
)

func TestBoardCacheRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	lists := []model.List{
		{
			ID: "l1", ProjectID: "p1", Name: "Todo",
			Tasks: []model.Task{
				{ID: "t1", ListID: "l1", Name: "first", Labels: []string{"bug"}},
				{ID: "t2", ListID: "l1", Name: "second", Assignees: []string{"u1", "u2"}},
			},
		},
		{ID: "l2", ProjectID: "p1", Name: "Done"},
	}

	require.NoError(t, s.ReplaceBoard(ctx, "p1", lists))

	got, err := s.GetBoard(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Todo", got[0].Name)
	require.Len(t, got[0].Tasks, 2)
	require.Equal(t, "t1", got[0].Tasks[0].ID)
	require.Equal(t, []string{"bug"}, got[0].Tasks[0].Labels)
	require.Equal(t, []string{"u1", "u2"}, got[0].Tasks[1].Assignees)
	require.Empty(t, got[1].Tasks)
}

func TestReplaceBoardOverwritesPreviousCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceBoard(ctx, "p1", []model.List{
		{ID: "l1", ProjectID: "p1", Name: "Old", Tasks: []model.Task{{ID: "t1", ListID: "l1", Name: "stale"}}},
	}))
	require.NoError(t, s.ReplaceBoard(ctx, "p1", []model.List{
		{ID: "l2", ProjectID: "p1", Name: "New"},
	}))

	got, err := s.GetBoard(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "l2", got[0].ID)
}

func TestHistoryCacheIgnoresDuplicates(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	target := model.Target{Kind: model.TargetChannel, ID: "ch1"}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m1 := model.ChatMessage{ID: "m1", SenderID: "u1", Body: "hi", Target: target, CreatedAt: at}
	require.NoError(t, s.ReplaceHistory(ctx, target, []model.ChatMessage{m1}))
	require.NoError(t, s.AppendMessage(ctx, m1))
	require.NoError(t, s.AppendMessage(ctx, model.ChatMessage{
		ID: "m2", SenderID: "u2", Body: "yo", Target: target, CreatedAt: at.Add(time.Minute),
	}))

	got, err := s.GetHistory(ctx, target, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "m1", got[0].ID)
	require.Equal(t, "m2", got[1].ID)
	require.True(t, got[0].CreatedAt.Equal(at))
}

func TestHistoryIsScopedToConversation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	chA := model.Target{Kind: model.TargetChannel, ID: "a"}
	direct := model.Target{Kind: model.TargetDirect, ID: "a"}
	at := time.Now().UTC()

	require.NoError(t, s.AppendMessage(ctx, model.ChatMessage{ID: "m1", Target: chA, CreatedAt: at}))
	require.NoError(t, s.AppendMessage(ctx, model.ChatMessage{ID: "m2", Target: direct, CreatedAt: at}))

	got, err := s.GetHistory(ctx, chA, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "m1", got[0].ID)
}

func TestNotificationsUnreadFlow(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	target := model.Target{Kind: model.TargetChannel, ID: "ch1"}

	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Target: target, SenderID: "u2", Message: "New message in #general",
	}))
	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		Target: model.Target{Kind: model.TargetDirect, ID: "u3"}, Message: "New direct message",
	}))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	require.NotEmpty(t, unread[0].ID)

	require.NoError(t, s.MarkTargetRead(ctx, target))
	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	require.NoError(t, s.MarkNotificationRead(ctx, unread[0].ID))
	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Empty(t, unread)
}
