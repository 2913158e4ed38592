package board

import (
	"log/slog"
	"sync"
	"time"

	"tasktide/internal/application/store"
	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
)

// Coordinator applies user mutations to the board. Moves and completion
// toggles are optimistic: local state changes first and is reverted if the
// data service rejects the write. Everything else waits for the change feed.
//
// Two mutations of the same task in flight at once are not serialized; the
// last local write and the last persisted write win independently.
type Coordinator struct {
	store        *store.KanbanStore
	tasks        repository.TaskRepository
	projects     repository.ProjectRepository
	dependencies repository.DependencyRepository
	notifier     Notifier
	log          *slog.Logger
	userID       string
	now          func() time.Time

	mu             sync.Mutex
	previousColumn map[int64]*int64
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithClock overrides the time source used for completion stamps
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	kanban *store.KanbanStore,
	data repository.DataService,
	notifier Notifier,
	userID string,
	opts ...Option,
) *Coordinator {
	c := &Coordinator{
		store:          kanban,
		tasks:          data,
		projects:       data,
		dependencies:   data,
		notifier:       notifier,
		log:            slog.Default(),
		userID:         userID,
		now:            time.Now,
		previousColumn: make(map[int64]*int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Log: c.log}
	}
	return c
}

// Store returns the store the coordinator writes to
func (c *Coordinator) Store() *store.KanbanStore {
	return c.store
}

func (c *Coordinator) ensureLoaded() error {
	if !c.store.Ready() {
		return entity.ErrNotLoaded
	}
	return nil
}

func (c *Coordinator) notify(level NoticeLevel, message string) {
	c.notifier.Notify(Notice{Level: level, Message: message})
}

// rememberColumn records where a task sat before it entered the terminal
// column so that uncompleting it can put it back. The returned func puts
// the previous entry back for a save that failed.
func (c *Coordinator) rememberColumn(taskID int64, column *int64) (undo func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.previousColumn[taskID]
	c.previousColumn[taskID] = entity.CloneID(column)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if had {
			c.previousColumn[taskID] = prev
		} else {
			delete(c.previousColumn, taskID)
		}
	}
}

func (c *Coordinator) restoreColumn(taskID int64) *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	column, ok := c.previousColumn[taskID]
	if !ok || column == nil || *column == entity.CompletedColumnID {
		return entity.Int64Ptr(entity.TodoColumnID)
	}
	return entity.CloneID(column)
}

func (c *Coordinator) forgetColumn(taskID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.previousColumn, taskID)
}
