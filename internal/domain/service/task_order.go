package service

import (
	"cmp"
	"slices"

	"tasktide/internal/domain/entity"
)

// SortTasks orders tasks by end date ascending. Tasks without an end date
// go last and keep their relative order.
func SortTasks(tasks []entity.Task) {
	slices.SortStableFunc(tasks, compareByEndDate)
}

// IsSortedByEndDate reports whether tasks already satisfy SortTasks ordering
func IsSortedByEndDate(tasks []entity.Task) bool {
	return slices.IsSortedFunc(tasks, compareByEndDate)
}

// SortProjects orders projects by id ascending
func SortProjects(projects []entity.Project) {
	slices.SortStableFunc(projects, func(a, b entity.Project) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareByEndDate(a, b entity.Task) int {
	switch {
	case a.EndDate == nil && b.EndDate == nil:
		return 0
	case a.EndDate == nil:
		return 1
	case b.EndDate == nil:
		return -1
	default:
		return a.EndDate.Compare(*b.EndDate)
	}
}
