package task

import (
	"time"

	"tasktide/internal/application/dto"
	"tasktide/internal/application/store"
	"tasktide/internal/domain/entity"
)

// GetBoardUseCase renders the partitioned board of a project
type GetBoardUseCase struct {
	store *store.KanbanStore
	now   func() time.Time
}

// NewGetBoardUseCase creates a new GetBoardUseCase
func NewGetBoardUseCase(kanban *store.KanbanStore) *GetBoardUseCase {
	return &GetBoardUseCase{store: kanban, now: time.Now}
}

// Execute partitions the given project's tasks (nil = active project).
// The unassigned bucket is emitted first, followed by the static columns.
func (uc *GetBoardUseCase) Execute(projectID *int64) (dto.BoardDTO, error) {
	if !uc.store.Ready() {
		return dto.BoardDTO{}, entity.ErrNotLoaded
	}
	if projectID == nil {
		projectID = uc.store.ActiveProjectID()
	}

	view := uc.store.BoardFor(projectID)
	columns := uc.store.Columns()
	projects := uc.store.Projects()
	tasks := uc.store.Tasks()
	now := uc.now()

	convert := func(list []entity.Task) []dto.TaskDTO {
		out := make([]dto.TaskDTO, 0, len(list))
		for _, t := range list {
			out = append(out, dto.TaskToDTO(t, columns, projects, uc.store.BlockedBy(t.ID), now))
		}
		return out
	}

	board := dto.BoardDTO{Columns: []dto.ColumnDTO{}}
	if projectID != nil {
		if project, ok := uc.store.Project(*projectID); ok {
			p := dto.ProjectToDTO(project, tasks, uc.store.ActiveProjectID())
			board.Project = &p
		}
	}

	if view.IsEmpty() && len(view.Columns) == 0 {
		return board, nil
	}

	board.Columns = append(board.Columns, dto.ColumnDTO{Title: dto.UnassignedColumnName, Tasks: convert(view.Unassigned)})
	for _, c := range view.Columns {
		board.Columns = append(board.Columns, dto.ColumnDTO{
			ID:    entity.Int64Ptr(c.Column.ID),
			Title: c.Column.Title,
			Tasks: convert(c.Tasks),
		})
	}
	return board, nil
}
