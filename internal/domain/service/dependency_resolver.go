package service

import "tasktide/internal/domain/entity"

// BlockedBy returns the incomplete tasks blocking taskID. Only direct
// blockedBy records are considered; a blocker that no longer exists counts
// as resolved. An unknown taskID yields an empty result.
func BlockedBy(tasks []entity.Task, taskID int64) []entity.Task {
	index := indexTasks(tasks)

	task, ok := index[taskID]
	if !ok || len(task.Dependencies) == 0 {
		return []entity.Task{}
	}

	blockers := make([]entity.Task, 0, len(task.Dependencies))
	for _, dep := range task.Dependencies {
		if !dep.IsBlocking() {
			continue
		}
		blocker, ok := index[dep.DependentTaskID]
		if !ok || blocker.Completed {
			continue
		}
		blockers = append(blockers, blocker)
	}
	return blockers
}

// IsBlocked reports whether taskID has at least one incomplete blocker
func IsBlocked(tasks []entity.Task, taskID int64) bool {
	return len(BlockedBy(tasks, taskID)) > 0
}

// Dependents returns the tasks that list taskID as a blocker, completed or not.
func Dependents(tasks []entity.Task, taskID int64) []entity.Task {
	out := []entity.Task{}
	for _, t := range tasks {
		if dep, ok := t.Dependency(taskID); ok && dep.IsBlocking() {
			out = append(out, t)
		}
	}
	return out
}

func indexTasks(tasks []entity.Task) map[int64]entity.Task {
	index := make(map[int64]entity.Task, len(tasks))
	for _, t := range tasks {
		index[t.ID] = t
	}
	return index
}
