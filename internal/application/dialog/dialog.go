package dialog

import (
	"sync"
	"time"

	"tasktide/internal/domain/entity"
)

// Kind identifies one modal dialog of the board
type Kind string

const (
	AddTask       Kind = "add_task"
	EditTask      Kind = "edit_task"
	DeleteTask    Kind = "delete_task"
	Project       Kind = "project"
	DeleteProject Kind = "delete_project"
)

// Kinds lists every dialog kind
func Kinds() []Kind {
	return []Kind{AddTask, EditTask, DeleteTask, Project, DeleteProject}
}

// DefaultDebounce is the window after an open during which close requests
// are ignored.
const DefaultDebounce = 100 * time.Millisecond

// State is the observable state of one dialog
type State struct {
	Open       bool
	SelectedID *int64
}

// Coordinator tracks which dialog is open and the entity it edits. A close
// requested within the debounce window of the latest open (of any dialog)
// is suppressed, since the gesture that opened a dialog can also emit a
// close.
type Coordinator struct {
	mu         sync.Mutex
	states     map[Kind]State
	breakPoint time.Time
	debounce   time.Duration
	now        func() time.Time
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithDebounce overrides the close debounce window
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		c.debounce = d
	}
}

// NewCoordinator creates a Coordinator with every dialog closed
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		states:   make(map[Kind]State),
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens a dialog scoped to selectedID (nil for "add" dialogs)
func (c *Coordinator) Open(kind Kind, selectedID *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[kind] = State{Open: true, SelectedID: entity.CloneID(selectedID)}
	c.breakPoint = c.now()
}

// Close closes a dialog and clears its selection. It returns false when the
// request fell inside the debounce window and the dialog stayed open.
func (c *Coordinator) Close(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.states[kind]
	if !state.Open {
		return true
	}
	if !c.breakPoint.IsZero() && c.now().Sub(c.breakPoint) < c.debounce {
		return false
	}

	c.states[kind] = State{}
	return true
}

// SetOpen mirrors a UI "open changed" callback
func (c *Coordinator) SetOpen(kind Kind, open bool, selectedID *int64) bool {
	if open {
		c.Open(kind, selectedID)
		return true
	}
	return c.Close(kind)
}

// State returns the current state of a dialog
func (c *Coordinator) State(kind Kind) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.states[kind]
	state.SelectedID = entity.CloneID(state.SelectedID)
	return state
}

// IsOpen reports whether a dialog is open
func (c *Coordinator) IsOpen(kind Kind) bool {
	return c.State(kind).Open
}

// Selected returns the entity the dialog edits
func (c *Coordinator) Selected(kind Kind) *int64 {
	return c.State(kind).SelectedID
}

// Active returns the first open dialog, if any
func (c *Coordinator) Active() (Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, kind := range Kinds() {
		if c.states[kind].Open {
			return kind, true
		}
	}
	return "", false
}
