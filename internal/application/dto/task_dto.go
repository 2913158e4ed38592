package dto

import (
	"time"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/service"
)

// TaskDTO represents a task as shown to users (CLI, MCP, export)
type TaskDTO struct {
	ID            int64      `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	ColumnID      *int64     `json:"column_id" yaml:"column_id"`
	ColumnName    string     `json:"column_name" yaml:"column_name"`
	ProjectID     *int64     `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	ProjectName   string     `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	Completed     bool       `json:"completed" yaml:"completed"`
	StartDate     *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty" yaml:"completed_date,omitempty"`
	Created       time.Time  `json:"created" yaml:"created"`
	Updated       *time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`
	DateLabel     string     `json:"date_label" yaml:"date_label"`
	Urgency       string     `json:"urgency,omitempty" yaml:"urgency,omitempty"`
	BlockedBy     []int64    `json:"blocked_by,omitempty" yaml:"blocked_by,omitempty"`
	Blocked       bool       `json:"blocked" yaml:"blocked"`
}

// UnassignedColumnName labels tasks with no column
const UnassignedColumnName = "Unassigned"

// TaskToDTO converts a task to its presentation form. blockers are the
// task's incomplete blockers as computed by the dependency resolver.
func TaskToDTO(task entity.Task, columns []entity.Column, projects []entity.Project, blockers []entity.Task, now time.Time) TaskDTO {
	d := TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		ColumnID:      task.ColumnID,
		ColumnName:    UnassignedColumnName,
		ProjectID:     task.ProjectID,
		Completed:     task.Completed,
		StartDate:     task.StartDate,
		EndDate:       task.EndDate,
		CompletedDate: task.CompletedDate,
		Created:       task.Created,
		Updated:       task.Updated,
		DateLabel:     service.DateText(task.StartDate, task.EndDate, task.CompletedDate),
		Blocked:       len(blockers) > 0,
	}

	if task.ColumnID != nil {
		if column, ok := entity.FindColumn(columns, *task.ColumnID); ok {
			d.ColumnName = column.Title
		}
	}
	if task.ProjectID != nil {
		for _, p := range projects {
			if p.ID == *task.ProjectID {
				d.ProjectName = p.Name
				break
			}
		}
	}
	if task.EndDate != nil && !task.Completed {
		d.Urgency = string(service.DateUrgency(*task.EndDate, now))
	}
	for _, b := range blockers {
		d.BlockedBy = append(d.BlockedBy, b.ID)
	}

	return d
}

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ColumnID    *int64     `json:"column_id,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Completed   bool       `json:"completed"`
}

// UpdateTaskRequest represents a request to edit a task. Nil fields are left
// unchanged; SetColumn distinguishes "move to unassigned" from "keep column".
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	ClearDates  bool       `json:"clear_dates,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	SetColumn   bool       `json:"set_column,omitempty"`
	ColumnID    *int64     `json:"column_id,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty"`
}

// MoveTaskRequest represents a request to move a task
type MoveTaskRequest struct {
	TaskID         int64  `json:"task_id"`
	TargetColumnID *int64 `json:"target_column_id"`
}
