package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tasktide/internal/application/dialog"
	"tasktide/internal/application/dto"
	"tasktide/internal/application/usecase/board"
	"tasktide/internal/domain/entity"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.followFocus()
		return m, nil

	case boardChangedMsg:
		m.refresh()
		m.followFocus()
		return m, waitForChange(m.changes)

	case mutationDoneMsg:
		if msg.err != nil {
			m.setNotice(board.Notice{Level: board.NoticeError, Message: msg.err.Error()})
		}
		m.drainNotices()
		m.refresh()
		m.followID = 0
		m.followFocus()
		return m, m.expireNotice()

	case closeDialogMsg:
		m.closeDialog(msg.kind)
		return m, nil

	case clearNoticeMsg:
		if m.notice != nil && m.seenAt.Equal(msg.shownAt) {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		if kind, ok := m.container.Dialogs.Active(); ok {
			return m.updateDialog(kind, msg)
		}
		return m.updateBoard(msg)
	}

	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Left):
		m.moveLeft()

	case key.Matches(msg, keys.Right):
		m.moveRight()

	case key.Matches(msg, keys.Up):
		m.moveUp()

	case key.Matches(msg, keys.Down):
		m.moveDown()

	case key.Matches(msg, keys.MoveRight):
		cmd = m.moveTask(1)

	case key.Matches(msg, keys.MoveLeft):
		cmd = m.moveTask(-1)

	case key.Matches(msg, keys.Complete):
		cmd = m.toggleComplete()

	case key.Matches(msg, keys.Add):
		m.openInput(dialog.AddTask, nil, "")

	case key.Matches(msg, keys.Edit):
		if task := m.currentTask(); task != nil {
			m.openInput(dialog.EditTask, &task.ID, task.Title)
		}

	case key.Matches(msg, keys.Delete):
		if task := m.currentTask(); task != nil {
			m.container.Dialogs.Open(dialog.DeleteTask, &task.ID)
		}

	case key.Matches(msg, keys.NextProject):
		m.nextProject()

	case key.Matches(msg, keys.ToggleDetails):
		m.showDetails = !m.showDetails
	}

	m.followFocus()
	return m, cmd
}

func (m Model) updateDialog(kind dialog.Kind, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kind == dialog.DeleteTask {
		switch {
		case key.Matches(msg, keys.Confirm):
			id := m.container.Dialogs.Selected(kind)
			if id == nil {
				m.closeDialog(kind)
				return m, nil
			}
			remove := m.mutate(func(ctx context.Context) error {
				return m.container.Coordinator.RemoveTask(ctx, *id)
			})
			closeCmd := m.submitClose(kind)
			return m, tea.Batch(closeCmd, remove)
		case key.Matches(msg, keys.Cancel):
			m.closeDialog(kind)
		}
		return m, nil
	}

	// Text dialogs: only enter and esc act, every other key edits the title.
	switch msg.Type {
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			return m, nil
		}
		save := m.saveTitle(kind, title)
		closeCmd := m.submitClose(kind)
		return m, tea.Batch(closeCmd, save)
	case tea.KeyEsc:
		m.closeDialog(kind)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveLeft moves focus to the left column
func (m *Model) moveLeft() {
	if m.focusedColumn > 0 {
		m.focusedColumn--
		m.focusedTask = 0
		m.clampTaskFocus()
	}
}

// moveRight moves focus to the right column
func (m *Model) moveRight() {
	if m.focusedColumn < len(m.board.Columns)-1 {
		m.focusedColumn++
		m.focusedTask = 0
		m.clampTaskFocus()
	}
}

// moveUp moves focus to the task above
func (m *Model) moveUp() {
	if m.focusedTask > 0 {
		m.focusedTask--
	}
}

// moveDown moves focus to the task below
func (m *Model) moveDown() {
	if m.focusedTask < m.currentColumnTaskCount()-1 {
		m.focusedTask++
	}
}

// moveTask moves the focused task one column in direction. The store
// updates optimistically, so the card jumps before the save completes.
func (m *Model) moveTask(direction int) tea.Cmd {
	task := m.currentTask()
	target := m.focusedColumn + direction
	if task == nil || target < 0 || target >= len(m.board.Columns) {
		return nil
	}

	columnID := entity.CloneID(m.board.Columns[target].ID)
	if columnID != nil && *columnID == entity.CompletedColumnID {
		if err := m.container.Coordinator.CheckCompletable(task.ID); err != nil {
			m.setNotice(blockedNotice(*task))
			return m.expireNotice()
		}
	}

	taskID := task.ID
	m.followID = taskID
	return m.mutate(func(ctx context.Context) error {
		return m.container.Coordinator.MoveTask(ctx, taskID, columnID)
	})
}

// toggleComplete completes the focused task or reopens it
func (m *Model) toggleComplete() tea.Cmd {
	task := m.currentTask()
	if task == nil {
		return nil
	}

	completed := !task.Completed
	if completed && task.Blocked {
		m.setNotice(blockedNotice(*task))
		return m.expireNotice()
	}

	taskID := task.ID
	return m.mutate(func(ctx context.Context) error {
		return m.container.Coordinator.ToggleComplete(ctx, taskID, completed)
	})
}

// nextProject cycles the active project through every project and then
// the tasks without one.
func (m *Model) nextProject() {
	projects := m.container.Store.Projects()
	options := make([]*int64, 0, len(projects)+1)
	for i := range projects {
		options = append(options, &projects[i].ID)
	}
	options = append(options, nil)

	current := m.container.Store.ActiveProjectID()
	next := options[0]
	for i, id := range options {
		if entity.SameID(id, current) {
			next = options[(i+1)%len(options)]
			break
		}
	}

	if err := m.container.Coordinator.SelectProject(next); err != nil {
		m.setNotice(board.Notice{Level: board.NoticeError, Message: err.Error()})
		return
	}
	m.focusedColumn, m.focusedTask = 0, 0
	m.horizontalScrollOffset = 0
	m.refresh()
}

func (m *Model) openInput(kind dialog.Kind, selected *int64, value string) {
	m.container.Dialogs.Open(kind, selected)
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// closeDialog honors the debounce: a refused close leaves the dialog open
func (m *Model) closeDialog(kind dialog.Kind) {
	if m.container.Dialogs.Close(kind) {
		m.input.Blur()
		m.input.Reset()
	}
}

// submitClose closes a dialog after a submit, retrying once the debounce
// window has passed.
func (m *Model) submitClose(kind dialog.Kind) tea.Cmd {
	if m.container.Dialogs.Close(kind) {
		m.input.Blur()
		m.input.Reset()
		return nil
	}
	return tea.Tick(m.container.Config.DialogDebounce(), func(time.Time) tea.Msg {
		return closeDialogMsg{kind: kind}
	})
}

func (m *Model) saveTitle(kind dialog.Kind, title string) tea.Cmd {
	if kind == dialog.EditTask {
		id := m.container.Dialogs.Selected(kind)
		if id == nil {
			return nil
		}
		taskID := *id
		return m.mutate(func(ctx context.Context) error {
			_, err := m.container.Coordinator.EditTask(ctx, taskID, dto.UpdateTaskRequest{Title: &title})
			return err
		})
	}

	columnID := m.focusedColumnID()
	if columnID != nil && *columnID == entity.CompletedColumnID {
		columnID = entity.Int64Ptr(entity.TodoColumnID)
	}
	return m.mutate(func(ctx context.Context) error {
		_, err := m.container.Coordinator.AddTask(ctx, dto.CreateTaskRequest{Title: title, ColumnID: columnID})
		return err
	})
}

func (m Model) focusedColumnID() *int64 {
	if m.focusedColumn < 0 || m.focusedColumn >= len(m.board.Columns) {
		return nil
	}
	return entity.CloneID(m.board.Columns[m.focusedColumn].ID)
}

// mutate runs a coordinator call off the UI goroutine
func (m Model) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{err: fn(context.Background())}
	}
}

// drainNotices shows the most recent coordinator notice
func (m *Model) drainNotices() {
	notices := m.container.Notices.Drain()
	if len(notices) > 0 {
		m.setNotice(notices[len(notices)-1])
	}
}

func (m *Model) setNotice(n board.Notice) {
	m.notice = &n
	m.seenAt = m.now()
}

func (m Model) expireNotice() tea.Cmd {
	if m.notice == nil {
		return nil
	}
	shownAt := m.seenAt
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{shownAt: shownAt}
	})
}

// followFocus keeps the focused card and column on screen
func (m *Model) followFocus() {
	visible, cards := m.layout()
	m.updateHorizontalScroll(visible)
	m.updateScroll(cards)
}

// clampTaskFocus ensures the task focus is within valid bounds
func (m *Model) clampTaskFocus() {
	taskCount := m.currentColumnTaskCount()
	if taskCount == 0 {
		m.focusedTask = 0
	} else if m.focusedTask >= taskCount {
		m.focusedTask = taskCount - 1
	}
}

func blockedNotice(task dto.TaskDTO) board.Notice {
	ids := make([]string, len(task.BlockedBy))
	for i, id := range task.BlockedBy {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	return board.Notice{
		Level:   board.NoticeWarning,
		Message: fmt.Sprintf("%q is blocked by %s", task.Title, strings.Join(ids, ", ")),
	}
}
