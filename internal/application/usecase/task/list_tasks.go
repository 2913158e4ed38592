package task

import (
	"time"

	"tasktide/internal/application/dto"
	"tasktide/internal/application/store"
	"tasktide/internal/domain/entity"
)

// ListTasksFilter narrows the listed tasks. A nil ProjectID means the
// active project; AllProjects lists every task.
type ListTasksFilter struct {
	ProjectID   *int64
	AllProjects bool
	ColumnID    *int64
	Unassigned  bool
	BlockedOnly bool
}

// ListTasksUseCase handles listing tasks for presentation
type ListTasksUseCase struct {
	store *store.KanbanStore
	now   func() time.Time
}

// NewListTasksUseCase creates a new ListTasksUseCase
func NewListTasksUseCase(kanban *store.KanbanStore) *ListTasksUseCase {
	return &ListTasksUseCase{
		store: kanban,
		now:   time.Now,
	}
}

// Execute lists the tasks matching the filter in board order
func (uc *ListTasksUseCase) Execute(filter ListTasksFilter) ([]dto.TaskDTO, error) {
	if !uc.store.Ready() {
		return nil, entity.ErrNotLoaded
	}

	projectID := filter.ProjectID
	if projectID == nil && !filter.AllProjects {
		projectID = uc.store.ActiveProjectID()
	}

	columns := uc.store.Columns()
	projects := uc.store.Projects()
	now := uc.now()

	result := make([]dto.TaskDTO, 0)
	for _, t := range uc.store.Tasks() {
		if !filter.AllProjects && !t.InProject(projectID) {
			continue
		}
		if filter.Unassigned && t.ColumnID != nil {
			continue
		}
		if filter.ColumnID != nil && !t.InColumn(filter.ColumnID) {
			continue
		}

		blockers := uc.store.BlockedBy(t.ID)
		if filter.BlockedOnly && len(blockers) == 0 {
			continue
		}
		result = append(result, dto.TaskToDTO(t, columns, projects, blockers, now))
	}

	return result, nil
}

// Get returns a single task in presentation form
func (uc *ListTasksUseCase) Get(taskID int64) (dto.TaskDTO, error) {
	if !uc.store.Ready() {
		return dto.TaskDTO{}, entity.ErrNotLoaded
	}
	t, ok := uc.store.Task(taskID)
	if !ok {
		return dto.TaskDTO{}, entity.ErrTaskNotFound
	}
	return dto.TaskToDTO(t, uc.store.Columns(), uc.store.Projects(), uc.store.BlockedBy(taskID), uc.now()), nil
}
