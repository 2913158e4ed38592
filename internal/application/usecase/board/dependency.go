package board

import (
	"context"
	"fmt"

	"tasktide/internal/domain/entity"
)

// AddDependency records that taskID is blocked by blockerID
func (c *Coordinator) AddDependency(ctx context.Context, taskID, blockerID int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	dep := entity.TaskDependencyRecord{
		TaskID:          taskID,
		DependentTaskID: blockerID,
		DependencyType:  entity.DependencyBlockedBy,
	}
	if err := dep.Validate(); err != nil {
		return err
	}
	if _, ok := c.store.Task(taskID); !ok {
		return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, taskID)
	}
	if _, ok := c.store.Task(blockerID); !ok {
		return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, blockerID)
	}

	if err := c.dependencies.UpsertDependency(ctx, dep); err != nil {
		c.notify(NoticeError, "Failed to add dependency.")
		return entity.NewPersistenceError("upsert dependency", err)
	}

	c.notify(NoticeSuccess, fmt.Sprintf("Task %d is now blocked by task %d.", taskID, blockerID))
	return nil
}

// RemoveDependency drops the blockedBy link between taskID and blockerID
func (c *Coordinator) RemoveDependency(ctx context.Context, taskID, blockerID int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	task, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, taskID)
	}
	if _, ok := task.Dependency(blockerID); !ok {
		return fmt.Errorf("%w: task %d is not blocked by %d", entity.ErrDependencyNotFound, taskID, blockerID)
	}

	if err := c.dependencies.DeleteDependency(ctx, taskID, blockerID); err != nil {
		c.notify(NoticeError, "Failed to remove dependency.")
		return entity.NewPersistenceError("delete dependency", err)
	}

	c.notify(NoticeSuccess, fmt.Sprintf("Task %d is no longer blocked by task %d.", taskID, blockerID))
	return nil
}
