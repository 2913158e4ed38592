package entity

import (
	"strings"
	"time"
)

// DependencyType names the relation a dependency record expresses.
type DependencyType string

const (
	// DependencyBlockedBy means the owning task cannot complete until the
	// referenced task is complete.
	DependencyBlockedBy DependencyType = "blockedBy"
)

// IsValid returns true if the dependency type is a known value
func (d DependencyType) IsValid() bool {
	return d == DependencyBlockedBy
}

// TaskDependencyRecord links a blocked task to the task blocking it.
type TaskDependencyRecord struct {
	// TaskID is the task the dependency is applied to (the blocked task).
	TaskID int64 `json:"taskId"`

	// DependentTaskID is the blocking task.
	DependentTaskID int64 `json:"dependentTaskId"`

	DependencyType DependencyType `json:"dependencyType"`
}

// IsBlocking returns true if this is a blockedBy dependency
func (d TaskDependencyRecord) IsBlocking() bool {
	return d.DependencyType == DependencyBlockedBy
}

// Validate checks the record before it is sent to the data service
func (d TaskDependencyRecord) Validate() error {
	if d.TaskID <= 0 || d.DependentTaskID <= 0 {
		return ErrInvalidTaskID
	}
	if d.TaskID == d.DependentTaskID {
		return ErrSelfDependency
	}
	if !d.DependencyType.IsValid() {
		return ErrInvalidDependencyType
	}
	return nil
}

// Task is a work item on the board.
type Task struct {
	ID            int64                  `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	ColumnID      *int64                 `json:"columnId"`
	StartDate     *time.Time             `json:"startDate,omitempty"`
	EndDate       *time.Time             `json:"endDate,omitempty"`
	Completed     bool                   `json:"completed"`
	CompletedDate *time.Time             `json:"completedDate"`
	Created       time.Time              `json:"created"`
	Updated       *time.Time             `json:"updated,omitempty"`
	UserID        string                 `json:"userId"`
	ProjectID     *int64                 `json:"projectId"`
	Dependencies  []TaskDependencyRecord `json:"dependencies,omitempty"`
}

// Validate checks user supplied fields. It never touches the data service.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Clone returns a deep copy so snapshots never share pointers with live state.
func (t Task) Clone() Task {
	c := t
	c.ColumnID = CloneID(t.ColumnID)
	c.ProjectID = CloneID(t.ProjectID)
	c.StartDate = cloneTime(t.StartDate)
	c.EndDate = cloneTime(t.EndDate)
	c.CompletedDate = cloneTime(t.CompletedDate)
	c.Updated = cloneTime(t.Updated)
	if t.Dependencies != nil {
		c.Dependencies = make([]TaskDependencyRecord, len(t.Dependencies))
		copy(c.Dependencies, t.Dependencies)
	}
	return c
}

// InColumn reports whether the task sits in the given column (nil = unassigned).
func (t Task) InColumn(columnID *int64) bool {
	return SameID(t.ColumnID, columnID)
}

// InProject reports whether the task belongs to the given project.
func (t Task) InProject(projectID *int64) bool {
	return SameID(t.ProjectID, projectID)
}

// Dependency returns the record keyed by the blocking task id.
func (t Task) Dependency(dependentTaskID int64) (TaskDependencyRecord, bool) {
	for _, dep := range t.Dependencies {
		if dep.DependentTaskID == dependentTaskID {
			return dep, true
		}
	}
	return TaskDependencyRecord{}, false
}

// MoveToColumn places the task in a column and keeps the completion flag
// consistent with the terminal column. completedDate is stamped only on
// the false→true transition and cleared when the task leaves "Completed".
func (t *Task) MoveToColumn(columnID *int64, now time.Time) {
	t.ColumnID = CloneID(columnID)

	if columnID != nil && *columnID == CompletedColumnID {
		if !t.Completed || t.CompletedDate == nil {
			stamp := now
			t.CompletedDate = &stamp
		}
		t.Completed = true
		return
	}

	t.Completed = false
	t.CompletedDate = nil
}

// SetCompleted applies the completion toggle used by the edit form.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed {
		if !t.Completed || t.CompletedDate == nil {
			stamp := now
			t.CompletedDate = &stamp
		}
		t.Completed = true
		return
	}
	t.Completed = false
	t.CompletedDate = nil
}

// SameID compares two nullable ids.
func SameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Int64Ptr returns a pointer to the provided id.
func Int64Ptr(v int64) *int64 {
	return &v
}

// CloneID copies a nullable id.
func CloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
