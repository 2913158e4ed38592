package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
	"tasktide/internal/domain/service"
)

// Listener is called after every state change with a copy of the new state.
type Listener func(state service.BoardState)

// KanbanStore owns the in-memory board state. Every write goes through it,
// one at a time; readers get copies.
type KanbanStore struct {
	mu      sync.RWMutex
	state   service.BoardState
	columns []entity.Column
	ready   bool

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	log *slog.Logger
}

// New creates an empty store. It reports Ready() == false until Load succeeds.
func New(columns []entity.Column, log *slog.Logger) *KanbanStore {
	if len(columns) == 0 {
		columns = entity.DefaultColumns()
	}
	if log == nil {
		log = slog.Default()
	}
	return &KanbanStore{
		columns:   columns,
		listeners: make(map[int]Listener),
		log:       log,
	}
}

// Load fetches the user's projects and tasks and installs them as the
// initial state.
func (s *KanbanStore) Load(
	ctx context.Context,
	userID string,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
) error {
	fetchedProjects, err := projects.FetchProjects(ctx, userID)
	if err != nil {
		return entity.NewPersistenceError("fetch projects", err)
	}

	fetchedTasks, err := tasks.FetchTasks(ctx, userID)
	if err != nil {
		return entity.NewPersistenceError("fetch tasks", err)
	}

	s.mu.Lock()
	next := service.ReplaceProjects(s.state, fetchedProjects)
	next = service.ReplaceTasks(next, fetchedTasks)
	s.state = next
	s.ready = true
	snapshot := next.Clone()
	s.mu.Unlock()

	s.log.Debug("board loaded", "user", userID, "tasks", len(fetchedTasks), "projects", len(fetchedProjects))
	s.notify(snapshot)
	return nil
}

// Ready reports whether the initial load has completed
func (s *KanbanStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Apply reconciles one change event. Unknown ids are reported as no-ops.
func (s *KanbanStore) Apply(event entity.ChangeEvent) (service.ApplyResult, error) {
	if err := event.Validate(); err != nil {
		return service.ApplyResult{NoOp: true}, fmt.Errorf("rejected change event: %w", err)
	}

	s.mu.Lock()
	next, result := service.Apply(s.state, event)
	if result.NoOp {
		s.mu.Unlock()
		s.log.Debug("change event was a no-op", "type", event.Type, "kind", event.Kind)
		return result, nil
	}
	s.state = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return result, nil
}

// ErrFeedClosed is returned by Run when the change feed ends while the
// caller still wants events. The state may have missed changes and must be
// reloaded.
var ErrFeedClosed = errors.New("change feed closed")

// Run applies events from the inbound queue in arrival order until the
// channel is closed or ctx is done.
func (s *KanbanStore) Run(ctx context.Context, events <-chan entity.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrFeedClosed
			}
			if _, err := s.Apply(event); err != nil {
				s.log.Warn("skipping change event", "error", err)
			}
		}
	}
}

// Snapshot returns a deep copy of the current state
func (s *KanbanStore) Snapshot() service.BoardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Columns returns the static column list
func (s *KanbanStore) Columns() []entity.Column {
	out := make([]entity.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by id
func (s *KanbanStore) Column(id int64) (entity.Column, bool) {
	return entity.FindColumn(s.columns, id)
}

// Board returns the active project's tasks partitioned by column
func (s *KanbanStore) Board() service.BoardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return service.Partition(cloneTasks(s.state.Tasks), s.columns, s.state.ActiveProjectID)
}

// BoardFor partitions the tasks of an arbitrary project
func (s *KanbanStore) BoardFor(projectID *int64) service.BoardView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return service.Partition(cloneTasks(s.state.Tasks), s.columns, projectID)
}

// Tasks returns every task, sorted by end date
func (s *KanbanStore) Tasks() []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.state.Tasks)
}

// Task returns one task by id
func (s *KanbanStore) Task(id int64) (entity.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.state.FindTask(id)
	if !ok {
		return entity.Task{}, false
	}
	return task.Clone(), true
}

// Projects returns every project, sorted by id
func (s *KanbanStore) Projects() []entity.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Project, len(s.state.Projects))
	copy(out, s.state.Projects)
	return out
}

// Project returns one project by id
func (s *KanbanStore) Project(id int64) (entity.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FindProject(id)
}

// ActiveProjectID returns the project currently shown on the board
func (s *KanbanStore) ActiveProjectID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.CloneID(s.state.ActiveProjectID)
}

// SelectProject changes the active project. nil selects tasks without a project.
func (s *KanbanStore) SelectProject(id *int64) error {
	s.mu.Lock()
	if id != nil {
		if _, ok := s.state.FindProject(*id); !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %d", entity.ErrProjectNotFound, *id)
		}
	}
	if entity.SameID(s.state.ActiveProjectID, id) {
		s.mu.Unlock()
		return nil
	}
	s.state.ActiveProjectID = entity.CloneID(id)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// BlockedBy returns the incomplete tasks blocking taskID
func (s *KanbanStore) BlockedBy(taskID int64) []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(service.BlockedBy(s.state.Tasks, taskID))
}

// IsBlocked reports whether taskID has an incomplete blocker
func (s *KanbanStore) IsBlocked(taskID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return service.IsBlocked(s.state.Tasks, taskID)
}

// Dependents returns the tasks waiting on taskID
func (s *KanbanStore) Dependents(taskID int64) []entity.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(service.Dependents(s.state.Tasks, taskID))
}

// PutTask writes a task straight into local state. It backs optimistic
// updates and must not be used for data service echoes.
func (s *KanbanStore) PutTask(task entity.Task) {
	s.mu.Lock()
	s.state = service.UpsertLocalTask(s.state, task)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// RestoreTask puts a pre-mutation snapshot back. A task removed in the
// meantime stays removed.
func (s *KanbanStore) RestoreTask(snapshot entity.Task) bool {
	s.mu.Lock()
	if _, ok := s.state.FindTask(snapshot.ID); !ok {
		s.mu.Unlock()
		return false
	}
	s.state = service.UpsertLocalTask(s.state, snapshot)
	state := s.state.Clone()
	s.mu.Unlock()

	s.notify(state)
	return true
}

// Subscribe registers a listener and returns a function removing it
func (s *KanbanStore) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// notify runs listeners outside the state lock.
func (s *KanbanStore) notify(state service.BoardState) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(state.Clone())
	}
}

func cloneTasks(tasks []entity.Task) []entity.Task {
	out := make([]entity.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
