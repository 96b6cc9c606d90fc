package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
)

// taskRow mirrors the tasks table.
type taskRow struct {
	ID          string  `db:"id"`
	ListID      string  `db:"list_id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Assignees   string  `db:"assignees"`
	Labels      string  `db:"labels"`
	StartDate   *string `db:"start_date"`
	DueDate     *string `db:"due_date"`
	CoverURL    string  `db:"cover_url"`
	Position    int     `db:"position"`
}

// ReplaceBoard overwrites the cached board for one project with the
// given list sequence, preserving column and task order as positions.
func (s *SQLiteStore) ReplaceBoard(ctx context.Context, projectID string, lists []model.List) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning board cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tasks WHERE list_id IN (SELECT id FROM lists WHERE project_id = ?)", projectID,
	); err != nil {
		return fmt.Errorf("clearing cached tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clearing cached lists: %w", err)
	}

	for li, l := range lists {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO lists (id, project_id, name, position) VALUES (?, ?, ?, ?)",
			l.ID, projectID, l.Name, li,
		); err != nil {
			return fmt.Errorf("caching list %s: %w", l.ID, err)
		}

		for ti, t := range l.Tasks {
			assignees, _ := json.Marshal(t.Assignees)
			labels, _ := json.Marshal(t.Labels)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks
					(id, list_id, name, description, assignees, labels, start_date, due_date, cover_url, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, l.ID, t.Name, t.Description,
				string(assignees), string(labels),
				t.StartDate, t.DueDate, t.CoverURL, ti,
			); err != nil {
				return fmt.Errorf("caching task %s: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing board cache: %w", err)
	}
	return nil
}

// GetBoard reads back the cached list/task sequence for a project in
// stored order. Returns an empty slice when nothing is cached.
func (s *SQLiteStore) GetBoard(ctx context.Context, projectID string) ([]model.List, error) {
	var listRows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	err := s.db.SelectContext(ctx, &listRows,
		"SELECT id, name FROM lists WHERE project_id = ? ORDER BY position", projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("reading cached lists: %w", err)
	}

	lists := make([]model.List, 0, len(listRows))
	for _, lr := range listRows {
		var rows []taskRow
		err := s.db.SelectContext(ctx, &rows,
			`SELECT id, list_id, name, description, assignees, labels,
			        start_date, due_date, cover_url, position
			 FROM tasks WHERE list_id = ? ORDER BY position`, lr.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("reading cached tasks for list %s: %w", lr.ID, err)
		}

		l := model.List{ID: lr.ID, ProjectID: projectID, Name: lr.Name}
		for _, r := range rows {
			l.Tasks = append(l.Tasks, r.toModel())
		}
		lists = append(lists, l)
	}
	return lists, nil
}

func (r taskRow) toModel() model.Task {
	t := model.Task{
		ID:          r.ID,
		ListID:      r.ListID,
		Name:        r.Name,
		Description: r.Description,
		CoverURL:    r.CoverURL,
	}
	_ = json.Unmarshal([]byte(r.Assignees), &t.Assignees)
	_ = json.Unmarshal([]byte(r.Labels), &t.Labels)
	if r.StartDate != nil {
		if ts, err := parseStoredTime(*r.StartDate); err == nil {
			t.StartDate = &ts
		}
	}
	if r.DueDate != nil {
		if ts, err := parseStoredTime(*r.DueDate); err == nil {
			t.DueDate = &ts
		}
	}
	return t
}
