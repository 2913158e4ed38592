package repository

import (
	"context"

	"tasktide/internal/domain/entity"
)

// TaskRepository defines the data service contract for tasks
type TaskRepository interface {
	// FetchTasks retrieves every task owned by the user, dependencies included
	FetchTasks(ctx context.Context, userID string) ([]entity.Task, error)

	// UpsertTask inserts a task with ID 0 or fully replaces an existing one.
	// The stored row is returned with its assigned ID.
	UpsertTask(ctx context.Context, task entity.Task) (entity.Task, error)

	// DeleteTask removes a task and cascades its dependency records
	DeleteTask(ctx context.Context, id int64) error
}

// ProjectRepository defines the data service contract for projects
type ProjectRepository interface {
	// FetchProjects retrieves every project owned by the user
	FetchProjects(ctx context.Context, userID string) ([]entity.Project, error)

	// UpsertProject inserts a project with ID 0 or replaces an existing one
	UpsertProject(ctx context.Context, project entity.Project) (entity.Project, error)

	// DeleteProject removes a project. Tasks keep existing with no project.
	DeleteProject(ctx context.Context, id int64) error
}

// DependencyRepository defines the data service contract for blockedBy records
type DependencyRepository interface {
	// UpsertDependency stores a record, replacing an existing (task, blocker) pair
	UpsertDependency(ctx context.Context, dep entity.TaskDependencyRecord) error

	// DeleteDependency removes the (taskID, dependentTaskID) record
	DeleteDependency(ctx context.Context, taskID, dependentTaskID int64) error
}

// ChangeFeed delivers decoded row changes for the tasks, task_dependencies
// and projects tables, filtered to one user. The channel is closed when ctx
// is done or the feed terminates.
type ChangeFeed interface {
	Subscribe(ctx context.Context, userID string) (<-chan entity.ChangeEvent, error)
}

// DataService bundles every contract the board engine consumes.
type DataService interface {
	TaskRepository
	ProjectRepository
	DependencyRepository
	ChangeFeed
}
