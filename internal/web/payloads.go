package web

import (
	"time"

	"tasktide/internal/domain/entity"
)

// TaskIn is the body of POST /api/tasks. ID 0 creates a task.
type TaskIn struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ColumnID    *int64     `json:"columnId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	ProjectID   *int64     `json:"projectId"`
}

// ProjectIn is the body of POST /api/projects. ID 0 creates a project.
type ProjectIn struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DependencyIn is the body of POST and DELETE /api/dependencies
type DependencyIn struct {
	TaskID          int64                 `json:"taskId"`
	DependentTaskID int64                 `json:"dependentTaskId"`
	DependencyType  entity.DependencyType `json:"dependencyType"`
}

// Record returns the dependency record, defaulting to blockedBy
func (in DependencyIn) Record() entity.TaskDependencyRecord {
	depType := in.DependencyType
	if depType == "" {
		depType = entity.DependencyBlockedBy
	}
	return entity.TaskDependencyRecord{
		TaskID:          in.TaskID,
		DependentTaskID: in.DependentTaskID,
		DependencyType:  depType,
	}
}
