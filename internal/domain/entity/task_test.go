package entity

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func TestMoveToColumnCompletesAndReverts(t *testing.T) {
	task := Task{ID: 1, Title: "write report", ColumnID: Int64Ptr(2)}

	task.MoveToColumn(Int64Ptr(CompletedColumnID), testNow)
	if !task.Completed {
		t.Errorf("Expected task to be completed after entering the terminal column")
	}
	if task.CompletedDate == nil || !task.CompletedDate.Equal(testNow) {
		t.Errorf("Expected completedDate %v, got %v", testNow, task.CompletedDate)
	}
	if *task.ColumnID != CompletedColumnID {
		t.Errorf("Expected column %d, got %d", CompletedColumnID, *task.ColumnID)
	}

	task.MoveToColumn(Int64Ptr(2), testNow.Add(time.Hour))
	if task.Completed {
		t.Errorf("Expected task to be incomplete after leaving the terminal column")
	}
	if task.CompletedDate != nil {
		t.Errorf("Expected completedDate to be cleared, got %v", task.CompletedDate)
	}
	if *task.ColumnID != 2 {
		t.Errorf("Expected column 2, got %d", *task.ColumnID)
	}
}

func TestMoveToColumnKeepsExistingCompletedDate(t *testing.T) {
	first := testNow.Add(-48 * time.Hour)
	task := Task{ID: 1, Title: "done already", Completed: true, CompletedDate: &first}

	task.MoveToColumn(Int64Ptr(CompletedColumnID), testNow)
	if !task.CompletedDate.Equal(first) {
		t.Errorf("Expected completedDate to stay %v, got %v", first, task.CompletedDate)
	}
}

func TestMoveToUnassigned(t *testing.T) {
	task := Task{ID: 1, Title: "t", ColumnID: Int64Ptr(3)}
	task.MoveToColumn(nil, testNow)
	if task.ColumnID != nil {
		t.Errorf("Expected nil column, got %d", *task.ColumnID)
	}
	if task.Completed {
		t.Errorf("Expected task to stay incomplete")
	}
}

func TestSetCompleted(t *testing.T) {
	task := Task{ID: 1, Title: "t"}
	task.SetCompleted(true, testNow)
	if !task.Completed || task.CompletedDate == nil {
		t.Fatalf("Expected task to be completed with a date, got %+v", task)
	}

	task.SetCompleted(true, testNow.Add(time.Hour))
	if !task.CompletedDate.Equal(testNow) {
		t.Errorf("Expected completedDate to be stamped once, got %v", task.CompletedDate)
	}

	task.SetCompleted(false, testNow)
	if task.Completed || task.CompletedDate != nil {
		t.Errorf("Expected completion to be cleared, got %+v", task)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	end := testNow.Add(24 * time.Hour)
	original := Task{
		ID:        7,
		Title:     "clone me",
		ColumnID:  Int64Ptr(1),
		ProjectID: Int64Ptr(3),
		EndDate:   &end,
		Dependencies: []TaskDependencyRecord{
			{TaskID: 7, DependentTaskID: 8, DependencyType: DependencyBlockedBy},
		},
	}

	clone := original.Clone()
	if !reflect.DeepEqual(original, clone) {
		t.Fatalf("Expected clone to equal original")
	}

	*clone.ColumnID = 4
	*clone.EndDate = testNow
	clone.Dependencies[0].DependentTaskID = 99

	if *original.ColumnID != 1 {
		t.Errorf("Expected original column to stay 1, got %d", *original.ColumnID)
	}
	if !original.EndDate.Equal(end) {
		t.Errorf("Expected original end date to stay %v, got %v", end, original.EndDate)
	}
	if original.Dependencies[0].DependentTaskID != 8 {
		t.Errorf("Expected original dependency to stay 8, got %d", original.Dependencies[0].DependentTaskID)
	}
}

func TestTaskValidate(t *testing.T) {
	start := testNow
	before := testNow.Add(-time.Hour)

	tests := []struct {
		name string
		task Task
		want error
	}{
		{"valid", Task{Title: "ok"}, nil},
		{"blank title", Task{Title: "   "}, ErrEmptyTaskTitle},
		{"end before start", Task{Title: "ok", StartDate: &start, EndDate: &before}, ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("Expected %v to be a validation error", err)
			}
		})
	}
}

func TestDependencyValidate(t *testing.T) {
	tests := []struct {
		name string
		dep  TaskDependencyRecord
		want error
	}{
		{"valid", TaskDependencyRecord{TaskID: 1, DependentTaskID: 2, DependencyType: DependencyBlockedBy}, nil},
		{"self", TaskDependencyRecord{TaskID: 1, DependentTaskID: 1, DependencyType: DependencyBlockedBy}, ErrSelfDependency},
		{"zero id", TaskDependencyRecord{TaskID: 0, DependentTaskID: 1, DependencyType: DependencyBlockedBy}, ErrInvalidTaskID},
		{"unknown type", TaskDependencyRecord{TaskID: 1, DependentTaskID: 2, DependencyType: "relatesTo"}, ErrInvalidDependencyType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.dep.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProjectValidate(t *testing.T) {
	tests := []struct {
		project Project
		want    error
	}{
		{Project{Name: "Home", Color: "#ff8800"}, nil},
		{Project{Name: "Home", Color: "#f80"}, nil},
		{Project{Name: "Home", Color: "hsl(var(--chart-1))"}, nil},
		{Project{Name: "", Color: "#ff8800"}, ErrEmptyProjectName},
		{Project{Name: "Home", Color: "orange"}, ErrInvalidColor},
	}

	for _, tt := range tests {
		if err := tt.project.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("Validate(%+v): expected %v, got %v", tt.project, tt.want, err)
		}
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("upsert task", cause)

	if !errors.Is(err, cause) {
		t.Errorf("Expected error to wrap cause")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "upsert task" {
		t.Errorf("Expected PersistenceError with op, got %v", err)
	}
	if NewPersistenceError("noop", nil) != nil {
		t.Errorf("Expected nil for nil cause")
	}
}
