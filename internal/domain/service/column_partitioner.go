package service

import "tasktide/internal/domain/entity"

// ColumnTasks is one column of the rendered board.
type ColumnTasks struct {
	Column entity.Column `json:"column"`
	Tasks  []entity.Task `json:"tasks"`
}

// BoardView is the active project's tasks grouped for display.
type BoardView struct {
	Unassigned []entity.Task `json:"unassigned"`
	Columns    []ColumnTasks `json:"columns"`
}

// IsEmpty reports whether the active project has no tasks at all
func (v BoardView) IsEmpty() bool {
	if len(v.Unassigned) > 0 {
		return false
	}
	for _, c := range v.Columns {
		if len(c.Tasks) > 0 {
			return false
		}
	}
	return true
}

// TaskCount returns the number of tasks on the board
func (v BoardView) TaskCount() int {
	n := len(v.Unassigned)
	for _, c := range v.Columns {
		n += len(c.Tasks)
	}
	return n
}

// Partition groups the tasks of the active project by column. Input order is
// kept within each group. Tasks whose column id matches no configured column
// are dropped from the view.
//
// When the project has no tasks the view carries no columns; once it has at
// least one task every column is emitted, empty or not.
func Partition(tasks []entity.Task, columns []entity.Column, activeProjectID *int64) BoardView {
	view := BoardView{
		Unassigned: []entity.Task{},
		Columns:    []ColumnTasks{},
	}

	scoped := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.InProject(activeProjectID) {
			scoped = append(scoped, t)
		}
	}
	if len(scoped) == 0 {
		return view
	}

	buckets := make(map[int64][]entity.Task, len(columns))
	for _, t := range scoped {
		if t.ColumnID == nil {
			view.Unassigned = append(view.Unassigned, t)
			continue
		}
		buckets[*t.ColumnID] = append(buckets[*t.ColumnID], t)
	}

	for _, column := range columns {
		columnTasks := buckets[column.ID]
		if columnTasks == nil {
			columnTasks = []entity.Task{}
		}
		view.Columns = append(view.Columns, ColumnTasks{Column: column, Tasks: columnTasks})
	}

	return view
}
