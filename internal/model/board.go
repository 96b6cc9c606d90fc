package model

import "time"

// Task is a unit of work belonging to exactly one List at a time.
// Its position within the board is implicit: it is the task's index in
// the owning List's Tasks slice, not a stored field.
type Task struct {
	// ID is the server-assigned identifier for this task.
	ID string `json:"id" db:"id"`

	// ListID identifies the List currently holding this task.
	ListID string `json:"list_id" db:"list_id"`

	// Name is the short human-readable title shown on the card.
	Name string `json:"name" db:"name"`

	// Description is the optional long-form body.
	Description string `json:"description" db:"description"`

	// Assignees holds the user IDs assigned to this task.
	Assignees []string `json:"assignees,omitempty" db:"-"`

	// Labels holds free-form label tags.
	Labels []string `json:"labels,omitempty" db:"-"`

	// StartDate and DueDate bound the optional scheduled range.
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	DueDate   *time.Time `json:"due_date,omitempty" db:"due_date"`

	// CoverURL references an optional cover image.
	CoverURL string `json:"cover_url,omitempty" db:"cover_url"`
}

// Clone returns a deep copy of the task so snapshots never share slices.
func (t Task) Clone() Task {
	c := t
	if t.Assignees != nil {
		c.Assignees = append([]string(nil), t.Assignees...)
	}
	if t.Labels != nil {
		c.Labels = append([]string(nil), t.Labels...)
	}
	if t.StartDate != nil {
		sd := *t.StartDate
		c.StartDate = &sd
	}
	if t.DueDate != nil {
		dd := *t.DueDate
		c.DueDate = &dd
	}
	return c
}

// List is a named, ordered column of tasks within a project.
// The order of Tasks defines the column render order.
type List struct {
	// ID is the server-assigned identifier for this list.
	ID string `json:"id" db:"id"`

	// ProjectID identifies the owning project.
	ProjectID string `json:"project_id" db:"project_id"`

	// Name is the column title.
	Name string `json:"name" db:"name"`

	// Tasks is the ordered task sequence for this column.
	Tasks []Task `json:"tasks"`
}

// Clone returns a deep copy of the list and all its tasks.
func (l List) Clone() List {
	c := l
	c.Tasks = make([]Task, len(l.Tasks))
	for i, t := range l.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// TaskPatch describes a partial update to a task. Nil fields are left
// unchanged by the merge.
type TaskPatch struct {
	Name        *string
	Description *string
	Assignees   *[]string
	Labels      *[]string
	StartDate   **time.Time
	DueDate     **time.Time
	CoverURL    *string
}

// Apply merges the patch into the task, preserving fields the patch
// does not mention.
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Assignees != nil {
		out.Assignees = append([]string(nil), (*p.Assignees)...)
	}
	if p.Labels != nil {
		out.Labels = append([]string(nil), (*p.Labels)...)
	}
	if p.StartDate != nil {
		out.StartDate = nil
		if *p.StartDate != nil {
			sd := **p.StartDate
			out.StartDate = &sd
		}
	}
	if p.DueDate != nil {
		out.DueDate = nil
		if *p.DueDate != nil {
			dd := **p.DueDate
			out.DueDate = &dd
		}
	}
	if p.CoverURL != nil {
		out.CoverURL = *p.CoverURL
	}
	return out
}
