package dto

import "tasktide/internal/domain/entity"

// ProjectDTO represents a project with its task count
type ProjectDTO struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color" yaml:"color"`
	TaskCount int    `json:"task_count" yaml:"task_count"`
	Active    bool   `json:"active" yaml:"active"`
}

// ProjectToDTO converts a project for display
func ProjectToDTO(project entity.Project, tasks []entity.Task, activeID *int64) ProjectDTO {
	count := 0
	for _, t := range tasks {
		if t.InProject(&project.ID) {
			count++
		}
	}
	return ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		Color:     project.Color,
		TaskCount: count,
		Active:    entity.SameID(activeID, &project.ID),
	}
}

// ColumnDTO is one rendered column of a board
type ColumnDTO struct {
	ID    *int64    `json:"id" yaml:"id"`
	Title string    `json:"title" yaml:"title"`
	Tasks []TaskDTO `json:"tasks" yaml:"tasks"`
}

// BoardDTO is the partitioned board for output
type BoardDTO struct {
	Project *ProjectDTO `json:"project,omitempty" yaml:"project,omitempty"`
	Columns []ColumnDTO `json:"columns" yaml:"columns"`
}
