package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/api"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/board"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/model"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/boardview"
	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/ui/taskform"
)

// cachedBoardMsg carries the locally cached board, shown while the
// authoritative fetch is in flight.
type cachedBoardMsg struct {
	projectID string
	lists     []model.List
}

// boardFetchedMsg carries the server's board for a project.
type boardFetchedMsg struct {
	projectID string
	lists     []model.List
	err       error
}

// opDoneMsg carries the server outcome for an already-applied local
// mutation: rename, move, delete, or update.
type opDoneMsg struct {
	mut board.Mutation
	err error
}

// listCreatedMsg carries the server-assigned list for a local create.
type listCreatedMsg struct {
	mut    board.Mutation
	tempID string
	list   model.List
	err    error
}

// taskCreatedMsg carries the server-assigned task for a local create.
type taskCreatedMsg struct {
	mut    board.Mutation
	tempID string
	task   model.Task
	patch  model.TaskPatch
	extra  bool
	err    error
}

// handleBoardIntent applies one board view intent optimistically and
// issues the matching backend call.
func (m Model) handleBoardIntent(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardview.MoveTaskMsg:
		mut, err := m.boardState.MoveTask(msg.TaskID, msg.SourceListID, msg.DestListID, msg.DestIndex)
		if err != nil {
			return m, m.setToast(err.Error())
		}
		m.boardView.SetSnapshot(m.boardState.Snapshot())
		if mut.Noop {
			return m, nil
		}
		return m, m.serverOpCmd(mut, func(ctx context.Context) error {
			return m.client.MoveTask(ctx, msg.TaskID, msg.DestListID, msg.DestIndex)
		})

	case boardview.CreateListMsg:
		mut, list, err := m.boardState.AddList(msg.Name)
		if err != nil {
			return m, m.setToast(err.Error())
		}
		m.boardView.SetSnapshot(m.boardState.Snapshot())
		return m, m.createListCmd(mut, list.ID, msg.Name)

	case boardview.RenameListMsg:
		mut, err := m.boardState.RenameList(msg.ListID, msg.Name)
		if err != nil {
			return m, m.setToast(err.Error())
		}
		m.boardView.SetSnapshot(m.boardState.Snapshot())
		if mut.Noop {
			return m, nil
		}
		return m, m.serverOpCmd(mut, func(ctx context.Context) error {
			return m.client.RenameList(ctx, msg.ListID, msg.Name)
		})

	case boardview.DeleteListMsg:
		mut, err := m.boardState.DeleteList(msg.ListID)
		if err != nil {
			return m, m.setToast(err.Error())
		}
		m.boardView.SetSnapshot(m.boardState.Snapshot())
		return m, m.serverOpCmd(mut, func(ctx context.Context) error {
			return m.client.DeleteList(ctx, msg.ListID)
		})

	case boardview.DeleteTaskMsg:
		mut, err := m.boardState.DeleteTask(msg.TaskID)
		if err != nil {
			return m, m.setToast(err.Error())
		}
		m.boardView.SetSnapshot(m.boardState.Snapshot())
		return m, m.serverOpCmd(mut, func(ctx context.Context) error {
			return m.client.DeleteTask(ctx, msg.TaskID)
		})

	case boardview.NewTaskRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.taskForm.StartCreate(msg.ListID)

	case boardview.EditTaskRequestMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		return m, m.taskForm.StartEdit(msg.Task)
	}

	return m, nil
}

// handleTaskFormCreated applies a submitted create form: the task shows
// up immediately under a client-assigned ID, and the extra fields are
// pushed once the server has assigned the real one.
func (m Model) handleTaskFormCreated(msg taskform.CreatedMsg) (tea.Model, tea.Cmd) {
	m.currentView = ViewBoard

	mut, task, err := m.boardState.AddTask(msg.ListID, msg.Name)
	if err != nil {
		return m, m.setToast(err.Error())
	}
	m.boardView.SetSnapshot(m.boardState.Snapshot())

	patch, extra := createPatch(msg)
	return m, m.createTaskCmd(mut, task.ID, msg.ListID, msg.Name, patch, extra)
}

// handleTaskFormUpdated applies a submitted edit form optimistically.
func (m Model) handleTaskFormUpdated(msg taskform.UpdatedMsg) (tea.Model, tea.Cmd) {
	m.currentView = ViewBoard

	mut, err := m.boardState.UpdateTask(msg.TaskID, msg.Patch)
	if err != nil {
		return m, m.setToast(err.Error())
	}
	m.boardView.SetSnapshot(m.boardState.Snapshot())
	if mut.Noop {
		return m, nil
	}
	return m, m.serverOpCmd(mut, func(ctx context.Context) error {
		return m.client.UpdateTask(ctx, msg.TaskID, msg.Patch)
	})
}

// handleOpDone settles a server call for an optimistic mutation. On a
// conflict the whole board is refetched; on other failures the mutation
// is rolled back unless a newer local one superseded it.
func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		return m, m.cacheBoardCmd()
	}

	if api.IsConflict(msg.err) {
		toastCmd := m.setToast("Board changed on the server, reloading")
		return m, tea.Batch(toastCmd, m.fetchBoardCmd(m.project.ID))
	}

	if m.boardState.Rollback(msg.mut) {
		m.boardView.SetSnapshot(m.boardState.Snapshot())
	}
	return m, m.setToast("Change failed: " + msg.err.Error())
}

// handleListCreated swaps the temporary list ID for the server one.
func (m Model) handleListCreated(msg listCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.handleOpDone(opDoneMsg{mut: msg.mut, err: msg.err})
	}

	m.boardState.ConfirmListID(msg.tempID, msg.list.ID)
	m.boardView.SetSnapshot(m.boardState.Snapshot())
	return m, m.cacheBoardCmd()
}

// handleTaskCreated swaps the temporary task ID for the server one and
// applies the deferred extra fields locally.
func (m Model) handleTaskCreated(msg taskCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.handleOpDone(opDoneMsg{mut: msg.mut, err: msg.err})
	}

	m.boardState.ConfirmTaskID(msg.tempID, msg.task.ID)
	if msg.extra {
		if _, err := m.boardState.UpdateTask(msg.task.ID, msg.patch); err != nil {
			m.log.WithError(err).Warn("applying deferred task fields")
		}
	}
	m.boardView.SetSnapshot(m.boardState.Snapshot())
	return m, m.cacheBoardCmd()
}

// handleCachedBoard shows the cached board only while nothing fresher
// has been installed.
func (m Model) handleCachedBoard(msg cachedBoardMsg) (tea.Model, tea.Cmd) {
	if msg.projectID != m.project.ID || len(msg.lists) == 0 || m.boardState.Version() > 0 {
		return m, nil
	}
	m.boardState.Reset(msg.projectID, msg.lists)
	m.boardView.SetSnapshot(m.boardState.Snapshot())
	return m, nil
}

// handleBoardFetched installs the authoritative server board.
func (m Model) handleBoardFetched(msg boardFetchedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setToast("Could not load board: " + msg.err.Error())
	}
	if msg.projectID != m.project.ID {
		return m, nil
	}

	m.boardState.Reset(msg.projectID, msg.lists)
	m.boardView.SetSnapshot(m.boardState.Snapshot())
	return m, m.cacheBoardCmd()
}

// serverOpCmd runs one backend call for an applied mutation.
func (m Model) serverOpCmd(mut board.Mutation, call func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return opDoneMsg{mut: mut, err: call(ctx)}
	}
}

func (m Model) createListCmd(mut board.Mutation, tempID, name string) tea.Cmd {
	client := m.client
	projectID := m.project.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		list, err := client.CreateList(ctx, projectID, name)
		return listCreatedMsg{mut: mut, tempID: tempID, list: list, err: err}
	}
}

func (m Model) createTaskCmd(mut board.Mutation, tempID, listID, name string, patch model.TaskPatch, extra bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		task, err := client.CreateTask(ctx, listID, name)
		if err != nil {
			return taskCreatedMsg{mut: mut, tempID: tempID, err: err}
		}
		if extra {
			if err := client.UpdateTask(ctx, task.ID, patch); err != nil {
				// The task exists; only the extras were lost.
				return taskCreatedMsg{mut: mut, tempID: tempID, task: task}
			}
		}
		return taskCreatedMsg{mut: mut, tempID: tempID, task: task, patch: patch, extra: extra}
	}
}

// loadCachedBoardCmd reads the last cached board for the project.
func (m Model) loadCachedBoardCmd(projectID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		lists, err := s.GetBoard(ctx, projectID)
		if err != nil {
			return cachedBoardMsg{projectID: projectID}
		}
		return cachedBoardMsg{projectID: projectID, lists: lists}
	}
}

func (m Model) fetchBoardCmd(projectID string) tea.Cmd {
	if projectID == "" {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		lists, err := client.FetchBoard(ctx, projectID)
		return boardFetchedMsg{projectID: projectID, lists: lists, err: err}
	}
}

// cacheBoardCmd persists the current snapshot for the next startup.
func (m Model) cacheBoardCmd() tea.Cmd {
	s := m.store
	snap := m.boardState.Snapshot()
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := s.ReplaceBoard(ctx, snap.ProjectID, snap.Lists); err != nil {
			log.WithError(err).Warn("caching board")
		}
		return nil
	}
}

// createPatch extracts the optional fields from a create form into a
// patch applied after the server assigns the task its real ID.
func createPatch(msg taskform.CreatedMsg) (model.TaskPatch, bool) {
	var patch model.TaskPatch
	extra := false

	if msg.Description != "" {
		patch.Description = &msg.Description
		extra = true
	}
	if len(msg.Assignees) > 0 {
		assignees := msg.Assignees
		patch.Assignees = &assignees
		extra = true
	}
	if len(msg.Labels) > 0 {
		labels := msg.Labels
		patch.Labels = &labels
		extra = true
	}
	if msg.StartDate != nil {
		patch.StartDate = &msg.StartDate
		extra = true
	}
	if msg.DueDate != nil {
		patch.DueDate = &msg.DueDate
		extra = true
	}

	return patch, extra
}
