package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

func TestLogin_InstallsTokenAndReturnsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ada@example.com", req["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "session-token-1",
			"user":  map[string]string{"_id": "u1", "name": "Ada", "email": "ada@example.com"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	token, user, err := c.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "session-token-1", token)
	require.Equal(t, "u1", user.ID)

	// Subsequent calls carry the token.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer session-token-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]interface{}{})
	}))
	defer srv2.Close()
	c2 := NewClient(srv2.URL, token)
	_, err = c2.FetchProjects(context.Background())
	require.NoError(t, err)
}

func TestNonSuccessStatusMapsToError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "task not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.MoveTask(context.Background(), "t1", "l2", 0)
	require.Error(t, err)
	require.True(t, IsConflict(err))
	require.False(t, IsAuth(err))
	require.Contains(t, err.Error(), "task not found")
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale")
	_, err := c.FetchBoard(context.Background(), "p1")
	require.True(t, IsAuth(err))
	require.False(t, IsConflict(err))
}

func TestRateLimitRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(boardResponse{Lists: []listDTO{{ID: "l1", Name: "Todo"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	lists, err := c.FetchBoard(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Len(t, lists, 1)
	require.Equal(t, "Todo", lists[0].Name)
}

func TestMoveTaskSendsListAndIndex(t *testing.T) {
	var got moveTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/tasks/t1/move", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	require.NoError(t, c.MoveTask(context.Background(), "t1", "l2", 3))
	require.Equal(t, "l2", got.ListID)
	require.Equal(t, 3, got.Index)
}

func TestFetchHistoryResolvesDirectConversationKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/messages/direct/peer-1", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"_id": "m1", "sender": "peer-1", "receiver": "self-1", "text": "hi"},
			{"_id": "m2", "sender": "self-1", "receiver": "peer-1", "text": "hello"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	target := model.Target{Kind: model.TargetDirect, ID: "peer-1"}
	msgs, err := c.FetchHistory(context.Background(), target, "self-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// Both sides of the thread resolve to the same conversation key.
	require.Equal(t, target, msgs[0].Target)
	require.Equal(t, target, msgs[1].Target)
}

func TestUpdateTaskOmitsAbsentFields(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	name := "Renamed"
	require.NoError(t, c.UpdateTask(context.Background(), "t1", model.TaskPatch{Name: &name}))

	require.Contains(t, raw, "name")
	require.NotContains(t, raw, "description")
	require.NotContains(t, raw, "labels")
}
