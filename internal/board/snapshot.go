package board

import (
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// Snapshot is the full ordered list/task state of one project at a point
// in time. Snapshots are immutable: every accepted mutation produces a
// new one with a strictly greater Version. The render layer may hold a
// Snapshot across frames without defensive copying.
type Snapshot struct {
	// Version increases by one on every accepted mutation or
	// reconciliation. It never decreases, including across rollbacks.
	Version uint64

	// ProjectID identifies the project this snapshot belongs to.
	ProjectID string

	// Lists is the ordered column sequence.
	Lists []model.List
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Lists = make([]model.List, len(s.Lists))
	for i, l := range s.Lists {
		c.Lists[i] = l.Clone()
	}
	return c
}

// ListIndex returns the position of the list with the given ID, or -1.
func (s Snapshot) ListIndex(listID string) int {
	for i := range s.Lists {
		if s.Lists[i].ID == listID {
			return i
		}
	}
	return -1
}

// FindTask locates a task by ID and returns its owning list ID and its
// index within that list's sequence.
func (s Snapshot) FindTask(taskID string) (listID string, index int, ok bool) {
	for i := range s.Lists {
		for j := range s.Lists[i].Tasks {
			if s.Lists[i].Tasks[j].ID == taskID {
				return s.Lists[i].ID, j, true
			}
		}
	}
	return "", 0, false
}

// TaskCount returns the total number of tasks across all lists.
func (s Snapshot) TaskCount() int {
	n := 0
	for i := range s.Lists {
		n += len(s.Lists[i].Tasks)
	}
	return n
}
