package mapper

import (
	"database/sql"
	"fmt"
	"time"

	"tasktide/internal/domain/entity"
)

// TimeLayout is the text encoding used for timestamp columns in every dialect
const TimeLayout = time.RFC3339Nano

// TaskRow is the tasks table row
type TaskRow struct {
	ID            int64          `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	ColumnID      sql.NullInt64  `db:"column_id"`
	StartDate     sql.NullString `db:"start_date"`
	EndDate       sql.NullString `db:"end_date"`
	Completed     bool           `db:"completed"`
	CompletedDate sql.NullString `db:"completed_date"`
	Created       string         `db:"created"`
	Updated       sql.NullString `db:"updated"`
	UserID        string         `db:"user_id"`
	ProjectID     sql.NullInt64  `db:"project_id"`
}

// ProjectRow is the projects table row
type ProjectRow struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Color  string `db:"color"`
	UserID string `db:"user_id"`
}

// DependencyRow is the task_dependencies table row
type DependencyRow struct {
	TaskID          int64  `db:"task_id"`
	DependentTaskID int64  `db:"dependent_task_id"`
	DependencyType  string `db:"dependency_type"`
}

// TaskToRow converts a Task entity to its row
func TaskToRow(task entity.Task) TaskRow {
	return TaskRow{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		ColumnID:      nullID(task.ColumnID),
		StartDate:     nullTime(task.StartDate),
		EndDate:       nullTime(task.EndDate),
		Completed:     task.Completed,
		CompletedDate: nullTime(task.CompletedDate),
		Created:       task.Created.Format(TimeLayout),
		Updated:       nullTime(task.Updated),
		UserID:        task.UserID,
		ProjectID:     nullID(task.ProjectID),
	}
}

// TaskFromRow converts a row to a Task entity without dependencies
func TaskFromRow(row TaskRow) (entity.Task, error) {
	task := entity.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		ColumnID:    idPtr(row.ColumnID),
		Completed:   row.Completed,
		UserID:      row.UserID,
		ProjectID:   idPtr(row.ProjectID),
	}

	created, err := time.Parse(TimeLayout, row.Created)
	if err != nil {
		return entity.Task{}, fmt.Errorf("failed to parse created of task %d: %w", row.ID, err)
	}
	task.Created = created

	fields := []struct {
		name string
		src  sql.NullString
		dst  **time.Time
	}{
		{"start_date", row.StartDate, &task.StartDate},
		{"end_date", row.EndDate, &task.EndDate},
		{"completed_date", row.CompletedDate, &task.CompletedDate},
		{"updated", row.Updated, &task.Updated},
	}
	for _, f := range fields {
		t, err := timePtr(f.src)
		if err != nil {
			return entity.Task{}, fmt.Errorf("failed to parse %s of task %d: %w", f.name, row.ID, err)
		}
		*f.dst = t
	}

	return task, nil
}

// ProjectToRow converts a Project entity to its row
func ProjectToRow(project entity.Project) ProjectRow {
	return ProjectRow{ID: project.ID, Name: project.Name, Color: project.Color, UserID: project.UserID}
}

// ProjectFromRow converts a row to a Project entity
func ProjectFromRow(row ProjectRow) entity.Project {
	return entity.Project{ID: row.ID, Name: row.Name, Color: row.Color, UserID: row.UserID}
}

// DependencyToRow converts a dependency record to its row
func DependencyToRow(dep entity.TaskDependencyRecord) DependencyRow {
	return DependencyRow{
		TaskID:          dep.TaskID,
		DependentTaskID: dep.DependentTaskID,
		DependencyType:  string(dep.DependencyType),
	}
}

// DependencyFromRow converts a row to a dependency record
func DependencyFromRow(row DependencyRow) entity.TaskDependencyRecord {
	return entity.TaskDependencyRecord{
		TaskID:          row.TaskID,
		DependentTaskID: row.DependentTaskID,
		DependencyType:  entity.DependencyType(row.DependencyType),
	}
}

func nullID(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return entity.Int64Ptr(v.Int64)
}

func nullTime(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Format(TimeLayout), Valid: true}
}

func timePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
