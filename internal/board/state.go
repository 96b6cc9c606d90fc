package board

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// ValidationError indicates that a local precondition failed and the
// intent was rejected before any network call.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Mutation is the handle returned for every applied mutation. The shell
// keeps it alongside the in-flight persistence call and hands it back to
// Rollback if the call fails.
type Mutation struct {
	// Version is the snapshot version this mutation produced.
	Version uint64

	// Op names the operation for diagnostics.
	Op string

	// Noop is set when the operation changed nothing; no persistence
	// call should be issued for it.
	Noop bool

	prev Snapshot
}

// State owns the board for one project. All methods are synchronous
// reducer-style transitions over the current snapshot and must be called
// from a single goroutine (the UI event loop).
type State struct {
	current Snapshot
	log     *logrus.Logger
}

// NewState creates an empty board state.
func NewState(log *logrus.Logger) *State {
	if log == nil {
		log = logrus.New()
	}
	return &State{log: log}
}

// Snapshot returns the current snapshot. The returned value shares no
// mutable data with the state.
func (s *State) Snapshot() Snapshot {
	return s.current.Clone()
}

// Version returns the current snapshot version.
func (s *State) Version() uint64 {
	return s.current.Version
}

// Reset replaces the whole board with server-fetched baseline state.
// Used for the initial load and for the forced refetch after a conflict.
func (s *State) Reset(projectID string, lists []model.List) Snapshot {
	next := Snapshot{
		Version:   s.current.Version + 1,
		ProjectID: projectID,
		Lists:     make([]model.List, len(lists)),
	}
	for i, l := range lists {
		next.Lists[i] = l.Clone()
	}
	s.current = next
	return s.current
}

// MoveTask removes the task from its source list and inserts it into the
// destination list at destIndex. destIndex is interpreted against the
// destination sequence after removal, so same-list forward moves do not
// shift by one. The index is clamped to the valid range.
//
// Moving a task to its current position is a no-op: the snapshot is
// unchanged and Mutation.Noop is set so no network call is issued.
func (s *State) MoveTask(taskID, sourceListID, destListID string, destIndex int) (Mutation, error) {
	const op = "move task"

	srcIdx := s.current.ListIndex(sourceListID)
	if srcIdx < 0 {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("source list %s not found", sourceListID)}
	}
	dstIdx := s.current.ListIndex(destListID)
	if dstIdx < 0 {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("destination list %s not found", destListID)}
	}

	ownerID, taskIdx, ok := s.current.FindTask(taskID)
	if !ok || ownerID != sourceListID {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("task %s not in list %s", taskID, sourceListID)}
	}

	next := s.current.Clone()

	// Remove first; the insertion index is defined over the sequence
	// with the task already gone.
	src := &next.Lists[srcIdx]
	task := src.Tasks[taskIdx]
	src.Tasks = append(src.Tasks[:taskIdx], src.Tasks[taskIdx+1:]...)

	dst := &next.Lists[dstIdx]
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dst.Tasks) {
		destIndex = len(dst.Tasks)
	}

	if sourceListID == destListID && destIndex == taskIdx {
		return Mutation{Op: op, Noop: true, Version: s.current.Version}, nil
	}

	task.ListID = destListID
	dst.Tasks = append(dst.Tasks, model.Task{})
	copy(dst.Tasks[destIndex+1:], dst.Tasks[destIndex:])
	dst.Tasks[destIndex] = task

	return s.commit(op, next), nil
}

// AddList appends a new list with a client-generated ID. The server's ID
// is reconciled later via ConfirmListID.
func (s *State) AddList(name string) (Mutation, model.List, error) {
	const op = "add list"

	name = strings.TrimSpace(name)
	if name == "" {
		return Mutation{}, model.List{}, &ValidationError{Op: op, Reason: "name is empty"}
	}

	list := model.List{
		ID:        uuid.NewString(),
		ProjectID: s.current.ProjectID,
		Name:      name,
	}

	next := s.current.Clone()
	next.Lists = append(next.Lists, list)
	return s.commit(op, next), list, nil
}

// RenameList changes a list's display name.
func (s *State) RenameList(listID, name string) (Mutation, error) {
	const op = "rename list"

	name = strings.TrimSpace(name)
	if name == "" {
		return Mutation{}, &ValidationError{Op: op, Reason: "name is empty"}
	}
	idx := s.current.ListIndex(listID)
	if idx < 0 {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("list %s not found", listID)}
	}
	if s.current.Lists[idx].Name == name {
		return Mutation{Op: op, Noop: true, Version: s.current.Version}, nil
	}

	next := s.current.Clone()
	next.Lists[idx].Name = name
	return s.commit(op, next), nil
}

// DeleteList removes a list and every task in its sequence. No dangling
// task entries survive the removal.
func (s *State) DeleteList(listID string) (Mutation, error) {
	const op = "delete list"

	idx := s.current.ListIndex(listID)
	if idx < 0 {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("list %s not found", listID)}
	}

	next := s.current.Clone()
	next.Lists = append(next.Lists[:idx], next.Lists[idx+1:]...)
	return s.commit(op, next), nil
}

// AddTask appends a new task with a client-generated ID to the end of
// the given list.
func (s *State) AddTask(listID, name string) (Mutation, model.Task, error) {
	const op = "add task"

	name = strings.TrimSpace(name)
	if name == "" {
		return Mutation{}, model.Task{}, &ValidationError{Op: op, Reason: "name is empty"}
	}
	idx := s.current.ListIndex(listID)
	if idx < 0 {
		return Mutation{}, model.Task{}, &ValidationError{Op: op, Reason: fmt.Sprintf("list %s not found", listID)}
	}

	task := model.Task{
		ID:     uuid.NewString(),
		ListID: listID,
		Name:   name,
	}

	next := s.current.Clone()
	next.Lists[idx].Tasks = append(next.Lists[idx].Tasks, task)
	return s.commit(op, next), task, nil
}

// DeleteTask removes a task from whichever list holds it.
func (s *State) DeleteTask(taskID string) (Mutation, error) {
	const op = "delete task"

	listID, taskIdx, ok := s.current.FindTask(taskID)
	if !ok {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("task %s not found", taskID)}
	}

	next := s.current.Clone()
	l := &next.Lists[next.ListIndex(listID)]
	l.Tasks = append(l.Tasks[:taskIdx], l.Tasks[taskIdx+1:]...)
	return s.commit(op, next), nil
}

// UpdateTask merges a partial patch into the task's fields. Fields the
// patch does not mention keep their current values.
func (s *State) UpdateTask(taskID string, patch model.TaskPatch) (Mutation, error) {
	const op = "update task"

	listID, taskIdx, ok := s.current.FindTask(taskID)
	if !ok {
		return Mutation{}, &ValidationError{Op: op, Reason: fmt.Sprintf("task %s not found", taskID)}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Mutation{}, &ValidationError{Op: op, Reason: "name is empty"}
	}

	next := s.current.Clone()
	l := &next.Lists[next.ListIndex(listID)]
	l.Tasks[taskIdx] = patch.Apply(l.Tasks[taskIdx])
	return s.commit(op, next), nil
}

// ConfirmListID swaps a client-generated list ID for the server-assigned
// one once the create call is acknowledged.
func (s *State) ConfirmListID(tempID, serverID string) {
	idx := s.current.ListIndex(tempID)
	if idx < 0 || tempID == serverID {
		return
	}
	next := s.current.Clone()
	next.Lists[idx].ID = serverID
	for i := range next.Lists[idx].Tasks {
		next.Lists[idx].Tasks[i].ListID = serverID
	}
	next.Version = s.current.Version + 1
	s.current = next
}

// ConfirmTaskID swaps a client-generated task ID for the server-assigned
// one once the create call is acknowledged.
func (s *State) ConfirmTaskID(tempID, serverID string) {
	listID, taskIdx, ok := s.current.FindTask(tempID)
	if !ok || tempID == serverID {
		return
	}
	next := s.current.Clone()
	next.Lists[next.ListIndex(listID)].Tasks[taskIdx].ID = serverID
	next.Version = s.current.Version + 1
	s.current = next
}

// Rollback restores the snapshot that preceded the given mutation after
// its persistence call failed. The restore only happens when the
// mutation is still the latest applied one; if a newer local mutation
// has superseded it, the failure is logged and the newer state wins.
// Reports whether the rollback was applied.
func (s *State) Rollback(m Mutation) bool {
	if m.Noop {
		return false
	}
	if s.current.Version != m.Version {
		s.log.WithFields(logrus.Fields{
			"op":      m.Op,
			"version": m.Version,
			"current": s.current.Version,
		}).Warn("skipping rollback: mutation superseded")
		return false
	}

	restored := m.prev.Clone()
	restored.Version = s.current.Version + 1
	s.current = restored
	s.log.WithField("op", m.Op).Info("rolled back optimistic mutation")
	return true
}

// commit installs the next snapshot and returns the mutation handle.
func (s *State) commit(op string, next Snapshot) Mutation {
	prev := s.current
	next.Version = prev.Version + 1
	s.current = next
	return Mutation{Version: next.Version, Op: op, prev: prev}
}
