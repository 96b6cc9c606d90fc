package board

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

func newTestState(t *testing.T, lists ...model.List) *State {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewState(log)
	s.Reset("project-1", lists)
	return s
}

func list(id string, taskIDs ...string) model.List {
	l := model.List{ID: id, ProjectID: "project-1", Name: "List " + id}
	for _, tid := range taskIDs {
		l.Tasks = append(l.Tasks, model.Task{ID: tid, ListID: id, Name: "Task " + tid})
	}
	return l
}

// taskIDsOf flattens the snapshot into listID -> ordered task IDs.
func taskIDsOf(s Snapshot) map[string][]string {
	out := make(map[string][]string, len(s.Lists))
	for _, l := range s.Lists {
		ids := []string{}
		for _, t := range l.Tasks {
			ids = append(ids, t.ID)
		}
		out[l.ID] = ids
	}
	return out
}

func TestMoveTask_AcrossLists(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2"), list("B"))

	mut, err := s.MoveTask("t1", "A", "B", 0)
	require.NoError(t, err)
	require.False(t, mut.Noop)

	got := taskIDsOf(s.Snapshot())
	require.Equal(t, []string{"t2"}, got["A"])
	require.Equal(t, []string{"t1"}, got["B"])

	// The moved task's owning list is updated.
	listID, idx, ok := s.Snapshot().FindTask("t1")
	require.True(t, ok)
	require.Equal(t, "B", listID)
	require.Equal(t, 0, idx)
	require.Equal(t, "B", s.Snapshot().Lists[1].Tasks[0].ListID)
}

func TestMoveTask_ForwardWithinSameList(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2", "t3"))

	// Insertion index is interpreted after removal, so moving t1 to
	// index 2 lands it at the end, not one short of it.
	_, err := s.MoveTask("t1", "A", "A", 2)
	require.NoError(t, err)

	got := taskIDsOf(s.Snapshot())
	require.Equal(t, []string{"t2", "t3", "t1"}, got["A"])
}

func TestMoveTask_BackwardWithinSameList(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2", "t3"))

	_, err := s.MoveTask("t3", "A", "A", 0)
	require.NoError(t, err)

	got := taskIDsOf(s.Snapshot())
	require.Equal(t, []string{"t3", "t1", "t2"}, got["A"])
}

func TestMoveTask_SamePositionIsNoop(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2"), list("B"))
	before := s.Snapshot()

	mut, err := s.MoveTask("t2", "A", "A", 1)
	require.NoError(t, err)
	require.True(t, mut.Noop)

	after := s.Snapshot()
	require.Equal(t, before.Version, after.Version)
	require.Equal(t, taskIDsOf(before), taskIDsOf(after))
}

func TestMoveTask_ClampsDestinationIndex(t *testing.T) {
	s := newTestState(t, list("A", "t1"), list("B", "t2"))

	_, err := s.MoveTask("t1", "A", "B", 99)
	require.NoError(t, err)
	require.Equal(t, []string{"t2", "t1"}, taskIDsOf(s.Snapshot())["B"])

	_, err = s.MoveTask("t1", "B", "B", -5)
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t2"}, taskIDsOf(s.Snapshot())["B"])
}

func TestMoveTask_UnknownDestinationIsValidationError(t *testing.T) {
	s := newTestState(t, list("A", "t1"))
	before := s.Snapshot()

	_, err := s.MoveTask("t1", "A", "nope", 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, taskIDsOf(before), taskIDsOf(s.Snapshot()))
}

func TestMoveTask_TaskNotInSourceList(t *testing.T) {
	s := newTestState(t, list("A", "t1"), list("B", "t2"))

	_, err := s.MoveTask("t2", "A", "B", 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

// Every task ID appears in exactly one list no matter which sequence of
// operations is applied.
func TestNoDuplicationOrOrphaning(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2", "t3"), list("B", "t4"), list("C"))

	_, err := s.MoveTask("t2", "A", "C", 0)
	require.NoError(t, err)
	_, err = s.MoveTask("t4", "B", "C", 1)
	require.NoError(t, err)
	_, err = s.MoveTask("t2", "C", "A", 2)
	require.NoError(t, err)
	_, err = s.DeleteTask("t1")
	require.NoError(t, err)
	_, _, err = s.AddTask("B", "fresh")
	require.NoError(t, err)

	seen := map[string]int{}
	snap := s.Snapshot()
	for _, ids := range taskIDsOf(snap) {
		for _, id := range ids {
			seen[id]++
		}
	}
	require.Equal(t, snap.TaskCount(), len(seen))
	for id, n := range seen {
		require.Equalf(t, 1, n, "task %s appears %d times", id, n)
	}
}

func TestDeleteList_RemovesItsTasks(t *testing.T) {
	s := newTestState(t, list("A", "t1"), list("B", "t5", "t6"))

	_, err := s.DeleteList("B")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Equal(t, -1, snap.ListIndex("B"))
	for _, id := range []string{"t5", "t6"} {
		_, _, ok := snap.FindTask(id)
		require.Falsef(t, ok, "task %s still present after its list was deleted", id)
	}
}

func TestRollback_RestoresPriorSnapshot(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2"), list("B"))
	before := s.Snapshot()

	mut, err := s.MoveTask("t1", "A", "B", 0)
	require.NoError(t, err)

	require.True(t, s.Rollback(mut))
	after := s.Snapshot()
	require.Equal(t, taskIDsOf(before), taskIDsOf(after))
	// Versions stay monotonic across the rollback.
	require.Greater(t, after.Version, mut.Version)
}

func TestRollback_SkippedWhenSuperseded(t *testing.T) {
	s := newTestState(t, list("A", "t1", "t2"), list("B"))

	first, err := s.MoveTask("t1", "A", "B", 0)
	require.NoError(t, err)

	// A second local move lands before the first persistence call
	// fails. The newer mutation wins; the stale failure must not
	// silently revert it.
	_, err = s.MoveTask("t1", "B", "A", 1)
	require.NoError(t, err)

	require.False(t, s.Rollback(first))
	got := taskIDsOf(s.Snapshot())
	require.Equal(t, []string{"t2", "t1"}, got["A"])
	require.Empty(t, got["B"])
}

func TestAddRenameDeleteList(t *testing.T) {
	s := newTestState(t)

	mut, l, err := s.AddList("Backlog")
	require.NoError(t, err)
	require.False(t, mut.Noop)
	require.NotEmpty(t, l.ID)
	require.Equal(t, "project-1", l.ProjectID)

	_, err = s.RenameList(l.ID, "Icebox")
	require.NoError(t, err)
	require.Equal(t, "Icebox", s.Snapshot().Lists[0].Name)

	// Renaming to the current name changes nothing.
	noop, err := s.RenameList(l.ID, "Icebox")
	require.NoError(t, err)
	require.True(t, noop.Noop)

	_, err = s.DeleteList(l.ID)
	require.NoError(t, err)
	require.Empty(t, s.Snapshot().Lists)
}

func TestAddList_EmptyNameRejectedLocally(t *testing.T) {
	s := newTestState(t)

	_, _, err := s.AddList("   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, uint64(1), s.Version())
}

func TestUpdateTask_PartialMergePreservesFields(t *testing.T) {
	s := newTestState(t, list("A", "t1"))

	desc := "full description"
	labels := []string{"bug", "ui"}
	_, err := s.UpdateTask("t1", model.TaskPatch{
		Description: &desc,
		Labels:      &labels,
	})
	require.NoError(t, err)

	got := s.Snapshot().Lists[0].Tasks[0]
	require.Equal(t, "Task t1", got.Name)
	require.Equal(t, desc, got.Description)
	require.Equal(t, labels, got.Labels)

	name := "Renamed"
	_, err = s.UpdateTask("t1", model.TaskPatch{Name: &name})
	require.NoError(t, err)

	got = s.Snapshot().Lists[0].Tasks[0]
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, desc, got.Description)
	require.Equal(t, labels, got.Labels)
}

func TestConfirmIDs_SwapClientIDsForServerIDs(t *testing.T) {
	s := newTestState(t)

	_, l, err := s.AddList("Doing")
	require.NoError(t, err)
	_, task, err := s.AddTask(l.ID, "ship it")
	require.NoError(t, err)

	s.ConfirmListID(l.ID, "srv-list-9")
	s.ConfirmTaskID(task.ID, "srv-task-3")

	snap := s.Snapshot()
	require.Equal(t, 0, snap.ListIndex("srv-list-9"))
	listID, _, ok := snap.FindTask("srv-task-3")
	require.True(t, ok)
	require.Equal(t, "srv-list-9", listID)
	require.Equal(t, "srv-list-9", snap.Lists[0].Tasks[0].ListID)
}

func TestSnapshot_IsDetachedFromState(t *testing.T) {
	s := newTestState(t, list("A", "t1"))

	snap := s.Snapshot()
	snap.Lists[0].Tasks[0].Name = "mutated copy"

	require.Equal(t, "Task t1", s.Snapshot().Lists[0].Tasks[0].Name)
}
