package service

import (
	"reflect"
	"testing"
	"time"

	"tasktide/internal/domain/entity"
)

var baseDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	d := baseDate.AddDate(0, 0, n)
	return &d
}

func newTask(id int64, column *int64, end *time.Time) entity.Task {
	return entity.Task{
		ID:        id,
		Title:     "task",
		ColumnID:  column,
		EndDate:   end,
		Created:   baseDate,
		UserID:    "user-1",
		ProjectID: entity.Int64Ptr(1),
	}
}

func blockedBy(owner, blocker int64) entity.TaskDependencyRecord {
	return entity.TaskDependencyRecord{TaskID: owner, DependentTaskID: blocker, DependencyType: entity.DependencyBlockedBy}
}

func taskIDs(tasks []entity.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestApplyIsIdempotent(t *testing.T) {
	t1 := newTask(1, entity.Int64Ptr(1), day(3))
	t2 := newTask(2, nil, nil)
	updated := t1.Clone()
	updated.Title = "renamed"

	events := []entity.ChangeEvent{
		entity.TaskChange(entity.EventInsert, &t2, nil),
		entity.TaskChange(entity.EventUpdate, &updated, &t1),
		entity.TaskChange(entity.EventDelete, nil, &t2),
		entity.DependencyChange(entity.EventInsert, &entity.TaskDependencyRecord{TaskID: 1, DependentTaskID: 2, DependencyType: entity.DependencyBlockedBy}, nil),
		entity.ProjectChange(entity.EventInsert, &entity.Project{ID: 5, Name: "New", Color: "#000"}, nil),
	}

	for _, event := range events {
		start := BoardState{Tasks: []entity.Task{t1}, Projects: []entity.Project{{ID: 1, Name: "P", Color: "#fff"}}}

		once, _ := Apply(start, event)
		twice, _ := Apply(once, event)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("%s %s: expected second application to be a no-op\nonce:  %+v\ntwice: %+v", event.Type, event.Kind, once, twice)
		}
	}
}

func TestApplyDuplicateInsertActsAsUpdate(t *testing.T) {
	original := newTask(1, nil, nil)
	state := BoardState{Tasks: []entity.Task{original}}

	dup := original.Clone()
	dup.Title = "second delivery"
	next, result := Apply(state, entity.TaskChange(entity.EventInsert, &dup, nil))

	if result.NoOp {
		t.Errorf("Expected duplicate insert to apply")
	}
	if len(next.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(next.Tasks))
	}
	if next.Tasks[0].Title != "second delivery" {
		t.Errorf("Expected title to be replaced, got %q", next.Tasks[0].Title)
	}
}

func TestApplyUpdateUnknownIsNoOp(t *testing.T) {
	state := BoardState{Tasks: []entity.Task{newTask(1, nil, nil)}}
	ghost := newTask(42, nil, nil)

	next, result := Apply(state, entity.TaskChange(entity.EventUpdate, &ghost, nil))
	if !result.NoOp {
		t.Errorf("Expected update of unknown task to be a no-op")
	}
	if !reflect.DeepEqual(next, state) {
		t.Errorf("Expected state to be unchanged")
	}

	_, result = Apply(state, entity.TaskChange(entity.EventDelete, nil, &ghost))
	if !result.NoOp {
		t.Errorf("Expected delete of unknown task to be a no-op")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	state := BoardState{Tasks: []entity.Task{newTask(1, entity.Int64Ptr(1), nil)}}
	before := state.Clone()

	updated := state.Tasks[0].Clone()
	updated.ColumnID = entity.Int64Ptr(3)
	Apply(state, entity.TaskChange(entity.EventUpdate, &updated, nil))

	if !reflect.DeepEqual(state, before) {
		t.Errorf("Expected input state to be untouched")
	}
}

func TestApplyKeepsSortOrder(t *testing.T) {
	state := BoardState{}
	inserts := []entity.Task{
		newTask(1, nil, nil),
		newTask(2, nil, day(5)),
		newTask(3, nil, day(1)),
		newTask(4, nil, nil),
		newTask(5, nil, day(3)),
	}
	for i := range inserts {
		state, _ = Apply(state, entity.TaskChange(entity.EventInsert, &inserts[i], nil))
		if !IsSortedByEndDate(state.Tasks) {
			t.Fatalf("Expected sorted tasks after insert %d, got %v", inserts[i].ID, taskIDs(state.Tasks))
		}
	}

	want := []int64{3, 5, 2, 1, 4}
	if got := taskIDs(state.Tasks); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}

	moved := inserts[1].Clone()
	moved.EndDate = nil
	state, _ = Apply(state, entity.TaskChange(entity.EventUpdate, &moved, nil))
	if !IsSortedByEndDate(state.Tasks) {
		t.Errorf("Expected sorted tasks after update, got %v", taskIDs(state.Tasks))
	}
	want = []int64{3, 5, 2, 1, 4}
	if got := taskIDs(state.Tasks); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}
}

func TestApplyTaskDeleteCascades(t *testing.T) {
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 3), blockedBy(1, 2)}
	b := newTask(2, nil, nil)
	b.Dependencies = []entity.TaskDependencyRecord{blockedBy(2, 3)}
	c := newTask(3, nil, nil)

	state := BoardState{Tasks: []entity.Task{a, b, c}}
	next, result := Apply(state, entity.TaskChange(entity.EventDelete, nil, &c))
	if result.NoOp {
		t.Fatalf("Expected delete to apply")
	}

	if _, ok := next.FindTask(3); ok {
		t.Errorf("Expected task 3 to be removed")
	}
	for _, task := range next.Tasks {
		if _, ok := task.Dependency(3); ok {
			t.Errorf("Expected task %d to lose its dependency on 3", task.ID)
		}
	}
	gotA, _ := next.FindTask(1)
	if len(gotA.Dependencies) != 1 || gotA.Dependencies[0].DependentTaskID != 2 {
		t.Errorf("Expected task 1 to keep its dependency on 2, got %+v", gotA.Dependencies)
	}
}

func TestApplyDependencyMergesIntoOwner(t *testing.T) {
	state := BoardState{Tasks: []entity.Task{newTask(1, nil, nil), newTask(2, nil, nil)}}

	dep := blockedBy(1, 2)
	state, _ = Apply(state, entity.DependencyChange(entity.EventInsert, &dep, nil))
	state, _ = Apply(state, entity.DependencyChange(entity.EventUpdate, &dep, nil))

	owner, _ := state.FindTask(1)
	if len(owner.Dependencies) != 1 {
		t.Fatalf("Expected one dependency record, got %+v", owner.Dependencies)
	}

	state, result := Apply(state, entity.DependencyChange(entity.EventDelete, nil, &dep))
	if result.NoOp {
		t.Errorf("Expected dependency delete to apply")
	}
	owner, ok := state.FindTask(1)
	if !ok {
		t.Fatalf("Expected owning task to remain after dependency delete")
	}
	if len(owner.Dependencies) != 0 {
		t.Errorf("Expected dependency to be removed, got %+v", owner.Dependencies)
	}

	orphan := blockedBy(99, 2)
	if _, result := Apply(state, entity.DependencyChange(entity.EventInsert, &orphan, nil)); !result.NoOp {
		t.Errorf("Expected dependency for unknown task to be a no-op")
	}
}

func TestApplyTaskUpdateKeepsDependencies(t *testing.T) {
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 2)}
	state := BoardState{Tasks: []entity.Task{a, newTask(2, nil, nil)}}

	row := newTask(1, entity.Int64Ptr(2), nil)
	next, _ := Apply(state, entity.TaskChange(entity.EventUpdate, &row, nil))

	got, _ := next.FindTask(1)
	if len(got.Dependencies) != 1 {
		t.Errorf("Expected dependency to survive a task row update, got %+v", got.Dependencies)
	}
}

func TestApplyProjectSelection(t *testing.T) {
	state := BoardState{
		Projects:        []entity.Project{{ID: 2, Name: "B"}, {ID: 1, Name: "A"}},
		ActiveProjectID: entity.Int64Ptr(1),
	}
	state = ReplaceProjects(state, state.Projects)
	if state.Projects[0].ID != 1 {
		t.Fatalf("Expected projects sorted by id, got %+v", state.Projects)
	}

	created := entity.Project{ID: 3, Name: "C"}
	state, result := Apply(state, entity.ProjectChange(entity.EventInsert, &created, nil))
	if !result.ActiveProjectChanged || *state.ActiveProjectID != 3 {
		t.Errorf("Expected new project to become active, got %v", state.ActiveProjectID)
	}

	state, result = Apply(state, entity.ProjectChange(entity.EventDelete, nil, &created))
	if !result.ActiveProjectChanged || *state.ActiveProjectID != 1 {
		t.Errorf("Expected active project to reset to 1, got %v", state.ActiveProjectID)
	}

	other := entity.Project{ID: 2}
	state, result = Apply(state, entity.ProjectChange(entity.EventDelete, nil, &other))
	if result.ActiveProjectChanged || *state.ActiveProjectID != 1 {
		t.Errorf("Expected active project to stay 1, got %v", state.ActiveProjectID)
	}

	last := entity.Project{ID: 1}
	state, _ = Apply(state, entity.ProjectChange(entity.EventDelete, nil, &last))
	if state.ActiveProjectID != nil {
		t.Errorf("Expected no active project, got %d", *state.ActiveProjectID)
	}
}

func TestScenarioBlockerCompletes(t *testing.T) {
	a := newTask(1, entity.Int64Ptr(1), nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 2)}
	b := newTask(2, entity.Int64Ptr(2), nil)
	state := BoardState{Tasks: []entity.Task{a, b}}

	blockers := BlockedBy(state.Tasks, 1)
	if len(blockers) != 1 || blockers[0].ID != 2 {
		t.Fatalf("Expected task 1 to be blocked by 2, got %v", taskIDs(blockers))
	}

	done := b.Clone()
	done.Completed = true
	state, _ = Apply(state, entity.TaskChange(entity.EventUpdate, &done, &b))

	if blockers := BlockedBy(state.Tasks, 1); len(blockers) != 0 {
		t.Errorf("Expected task 1 to be unblocked, got %v", taskIDs(blockers))
	}
}
