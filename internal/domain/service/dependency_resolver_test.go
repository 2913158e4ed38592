package service

import (
	"reflect"
	"testing"

	"tasktide/internal/domain/entity"
)

func TestBlockedBy(t *testing.T) {
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 2), blockedBy(1, 3), blockedBy(1, 404)}
	b := newTask(2, nil, nil)
	c := newTask(3, nil, nil)
	c.Completed = true
	tasks := []entity.Task{a, b, c}

	got := taskIDs(BlockedBy(tasks, 1))
	if !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("Expected [2], got %v", got)
	}
	if !IsBlocked(tasks, 1) {
		t.Errorf("Expected task 1 to be blocked")
	}
	if IsBlocked(tasks, 2) {
		t.Errorf("Expected task 2 not to be blocked")
	}
	if got := BlockedBy(tasks, 999); len(got) != 0 {
		t.Errorf("Expected unknown task to have no blockers, got %v", taskIDs(got))
	}
}

func TestBlockedByIgnoresOtherTypes(t *testing.T) {
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{{TaskID: 1, DependentTaskID: 2, DependencyType: "relatesTo"}}
	tasks := []entity.Task{a, newTask(2, nil, nil)}

	if got := BlockedBy(tasks, 1); len(got) != 0 {
		t.Errorf("Expected no blockers, got %v", taskIDs(got))
	}
}

func TestBlockedByIsOneHop(t *testing.T) {
	// 1 is blocked by 2, 2 is blocked by 3. 2 is complete, so 1 is free
	// even though 3 is still open.
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 2)}
	b := newTask(2, nil, nil)
	b.Completed = true
	b.Dependencies = []entity.TaskDependencyRecord{blockedBy(2, 3)}
	c := newTask(3, nil, nil)

	if IsBlocked([]entity.Task{a, b, c}, 1) {
		t.Errorf("Expected task 1 not to be blocked transitively")
	}
}

func TestDependents(t *testing.T) {
	a := newTask(1, nil, nil)
	a.Dependencies = []entity.TaskDependencyRecord{blockedBy(1, 3)}
	b := newTask(2, nil, nil)
	b.Dependencies = []entity.TaskDependencyRecord{blockedBy(2, 3)}
	c := newTask(3, nil, nil)

	got := taskIDs(Dependents([]entity.Task{a, b, c}, 3))
	if !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
}
