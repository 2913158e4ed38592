package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasktide/internal/application/dialog"
	"tasktide/internal/application/dto"
	"tasktide/internal/application/usecase/board"
	"tasktide/internal/di"
	"tasktide/internal/domain/service"
)

// noticeTTL is how long a notice stays in the status line
const noticeTTL = 4 * time.Second

// Model represents the TUI state
type Model struct {
	container              *di.Container
	board                  dto.BoardDTO
	focusedColumn          int   // which column is currently selected
	focusedTask            int   // which task in the current column is selected
	scrollOffsets          []int // scroll offset for each column (vertical)
	horizontalScrollOffset int   // horizontal scroll offset for columns
	width                  int
	height                 int
	showDetails            bool
	followID               int64 // task to keep focused while it moves

	input  textinput.Model
	notice *board.Notice
	seenAt time.Time

	changes     chan struct{}
	unsubscribe func()
	now         func() time.Time
}

// boardChangedMsg is sent when the store published a new state
type boardChangedMsg struct{}

// mutationDoneMsg carries the result of a coordinator call
type mutationDoneMsg struct {
	err error
}

// closeDialogMsg retries a close that fell inside the debounce window
type closeDialogMsg struct {
	kind dialog.Kind
}

// clearNoticeMsg expires the notice shown at the given time
type clearNoticeMsg struct {
	shownAt time.Time
}

// NewModel creates a TUI bound to a loaded container. The model follows
// the store until Close is called.
func NewModel(container *di.Container) Model {
	input := textinput.New()
	input.Placeholder = "Task title"
	input.CharLimit = 200

	changes := make(chan struct{}, 1)
	unsubscribe := container.Store.Subscribe(func(service.BoardState) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		container:   container,
		input:       input,
		changes:     changes,
		unsubscribe: unsubscribe,
		now:         time.Now,
	}
	m.refresh()
	return m
}

// Close stops following the store
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// waitForChange blocks until the store publishes
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return boardChangedMsg{}
	}
}

// refresh re-renders the board of the active project from the store
func (m *Model) refresh() {
	view, err := m.container.GetBoard.Execute(m.container.Store.ActiveProjectID())
	if err != nil {
		m.setNotice(board.Notice{Level: board.NoticeError, Message: err.Error()})
		return
	}
	m.board = view
	if len(m.scrollOffsets) != len(view.Columns) {
		m.scrollOffsets = make([]int, len(view.Columns))
	}
	if m.focusedColumn >= len(view.Columns) {
		m.focusedColumn = len(view.Columns) - 1
	}
	if m.focusedColumn < 0 {
		m.focusedColumn = 0
	}
	m.clampTaskFocus()
	if m.followID != 0 {
		m.focusTask(m.followID)
	}
}

// Helper to get task count in current column
func (m Model) currentColumnTaskCount() int {
	if m.focusedColumn < 0 || m.focusedColumn >= len(m.board.Columns) {
		return 0
	}
	return len(m.board.Columns[m.focusedColumn].Tasks)
}

// Helper to get current task
func (m Model) currentTask() *dto.TaskDTO {
	count := m.currentColumnTaskCount()
	if count == 0 || m.focusedTask < 0 || m.focusedTask >= count {
		return nil
	}
	return &m.board.Columns[m.focusedColumn].Tasks[m.focusedTask]
}

// focusTask moves focus to the task wherever it is on the board
func (m *Model) focusTask(id int64) {
	for ci, col := range m.board.Columns {
		for ti, t := range col.Tasks {
			if t.ID == id {
				m.focusedColumn = ci
				m.focusedTask = ti
				return
			}
		}
	}
}

// Helper to update scroll position to keep focused task visible
func (m *Model) updateScroll(viewportHeight int) {
	if m.focusedColumn < 0 || m.focusedColumn >= len(m.scrollOffsets) {
		return
	}

	taskCount := m.currentColumnTaskCount()
	if taskCount == 0 {
		m.scrollOffsets[m.focusedColumn] = 0
		return
	}

	offset := m.scrollOffsets[m.focusedColumn]
	if m.focusedTask < offset {
		offset = m.focusedTask
	} else if m.focusedTask >= offset+viewportHeight {
		offset = m.focusedTask - viewportHeight + 1
	}
	m.scrollOffsets[m.focusedColumn] = clamp(offset, 0, taskCount-viewportHeight)
}

// Helper to update horizontal scroll to keep focused column visible
func (m *Model) updateHorizontalScroll(visibleColumns int) {
	if visibleColumns <= 0 {
		visibleColumns = 1
	}

	total := len(m.board.Columns)
	offset := m.horizontalScrollOffset
	if m.focusedColumn < offset {
		offset = m.focusedColumn
	} else if m.focusedColumn >= offset+visibleColumns {
		offset = m.focusedColumn - visibleColumns + 1
	}
	m.horizontalScrollOffset = clamp(offset, 0, total-visibleColumns)
}

// clamp limits v to [lo, hi]; hi below lo yields lo
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
