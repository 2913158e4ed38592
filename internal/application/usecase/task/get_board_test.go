package task

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tasktide/internal/application/dto"
	"tasktide/internal/application/store"
	"tasktide/internal/domain/entity"
)

func newGetBoard(kanban *store.KanbanStore) *GetBoardUseCase {
	uc := NewGetBoardUseCase(kanban)
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestGetBoardPartitionsActiveProject(t *testing.T) {
	kanban, projectID := seed(t)

	board, err := newGetBoard(kanban).Execute(nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if board.Project == nil || board.Project.ID != projectID {
		t.Fatalf("Expected project %d, got %+v", projectID, board.Project)
	}
	if board.Project.TaskCount != 3 || !board.Project.Active {
		t.Errorf("Expected active project with 3 tasks, got %+v", board.Project)
	}

	if len(board.Columns) != len(entity.DefaultColumns())+1 {
		t.Fatalf("Expected unassigned plus %d columns, got %d", len(entity.DefaultColumns()), len(board.Columns))
	}
	first := board.Columns[0]
	if first.ID != nil || first.Title != dto.UnassignedColumnName {
		t.Errorf("Expected unassigned bucket first, got %+v", first)
	}
	if len(first.Tasks) != 0 {
		t.Errorf("Expected no unassigned tasks in the project, got %v", titles(first.Tasks))
	}

	want := map[string][]string{
		"To Do":     {"Dig"},
		"Working":   {"Plant"},
		"Completed": {"Harvest"},
	}
	for _, col := range board.Columns[1:] {
		if !sameTitles(titles(col.Tasks), want[col.Title]) {
			t.Errorf("Column %q: expected %v, got %v", col.Title, want[col.Title], titles(col.Tasks))
		}
	}

	working := board.Columns[2]
	if len(working.Tasks) != 1 || !working.Tasks[0].Blocked {
		t.Errorf("Expected blocked task in Working, got %+v", working.Tasks)
	}
}

func TestGetBoardWithoutProject(t *testing.T) {
	kanban, _ := seed(t)
	if err := kanban.SelectProject(nil); err != nil {
		t.Fatalf("SelectProject failed: %v", err)
	}

	board, err := newGetBoard(kanban).Execute(nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if board.Project != nil {
		t.Errorf("Expected no project, got %+v", board.Project)
	}
	if got := titles(board.Columns[0].Tasks); !sameTitles(got, []string{"Loose"}) {
		t.Errorf("Expected Loose in the unassigned bucket, got %v", got)
	}
}

func TestGetBoardExplicitProjectKeepsSelection(t *testing.T) {
	kanban, projectID := seed(t)
	if err := kanban.SelectProject(nil); err != nil {
		t.Fatalf("SelectProject failed: %v", err)
	}

	board, err := newGetBoard(kanban).Execute(&projectID)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if board.Project == nil || board.Project.Active {
		t.Errorf("Expected inactive project header, got %+v", board.Project)
	}
	if kanban.ActiveProjectID() != nil {
		t.Error("Rendering a project must not change the selection")
	}
}

func TestGetBoardNotLoaded(t *testing.T) {
	uc := NewGetBoardUseCase(store.New(nil, slog.New(slog.NewTextHandler(io.Discard, nil))))
	if _, err := uc.Execute(nil); !errors.Is(err, entity.ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded, got %v", err)
	}
}
