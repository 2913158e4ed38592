package board

import (
	"context"
	"fmt"

	"tasktide/internal/domain/entity"
)

// MoveTask moves a task to targetColumnID (nil = unassigned). The local
// state is updated before the data service is called and restored to the
// exact prior task if the call fails.
func (c *Coordinator) MoveTask(ctx context.Context, taskID int64, targetColumnID *int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	before, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, taskID)
	}

	if before.InColumn(targetColumnID) {
		return nil
	}

	if targetColumnID != nil {
		if _, ok := c.store.Column(*targetColumnID); !ok {
			return fmt.Errorf("%w: %d", entity.ErrColumnNotFound, *targetColumnID)
		}
	}

	return c.commitMove(ctx, before, targetColumnID)
}

// commitMove applies the move locally, saves it and reverts on failure
func (c *Coordinator) commitMove(ctx context.Context, before entity.Task, targetColumnID *int64) error {
	taskID := before.ID
	entersTerminal := targetColumnID != nil && *targetColumnID == entity.CompletedColumnID
	if entersTerminal && c.store.IsBlocked(taskID) {
		// The data service has the final say; the UI should have disabled this.
		c.log.Warn("completing a blocked task", "task", taskID, "blocked_by", blockerIDs(c.store.BlockedBy(taskID)))
	}

	after := before.Clone()
	after.MoveToColumn(targetColumnID, c.now())

	undo := func() {}
	if entersTerminal && !before.InColumn(targetColumnID) {
		undo = c.rememberColumn(taskID, before.ColumnID)
	}

	c.store.PutTask(after)

	if _, err := c.tasks.UpsertTask(ctx, after); err != nil {
		c.store.RestoreTask(before)
		undo()
		c.log.Error("task move failed, reverted", "task", taskID, "error", err)
		c.notify(NoticeError, fmt.Sprintf("Failed to move %q", before.Title))
		return entity.NewPersistenceError("upsert task", err)
	}

	if !entersTerminal && !after.Completed {
		c.forgetColumn(taskID)
	}
	return nil
}

// HandleDragEnd maps a finished drag gesture onto MoveTask. Dropping a task
// back on its source column does nothing.
func (c *Coordinator) HandleDragEnd(ctx context.Context, event entity.DragEndEvent) error {
	if entity.SameID(event.SourceColumnID, event.TargetColumnID) {
		return nil
	}
	return c.MoveTask(ctx, event.DraggedTaskID, event.TargetColumnID)
}

// ToggleComplete marks a task complete by moving it to the terminal column,
// or reopens it by moving it back to the column it came from (To Do when
// unknown).
func (c *Coordinator) ToggleComplete(ctx context.Context, taskID int64, completed bool) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	task, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, taskID)
	}

	terminal := entity.Int64Ptr(entity.CompletedColumnID)
	inTerminal := task.InColumn(terminal)
	if completed {
		switch {
		case task.Completed && inTerminal:
			return nil
		case inTerminal:
			// In the terminal column but not marked complete: repair the coupling.
			return c.commitMove(ctx, task, terminal)
		}
		return c.MoveTask(ctx, taskID, terminal)
	}

	switch {
	case !task.Completed && !inTerminal:
		return nil
	case !inTerminal:
		// Marked complete outside the terminal column: clear it in place.
		return c.commitMove(ctx, task, task.ColumnID)
	}
	return c.MoveTask(ctx, taskID, c.restoreColumn(taskID))
}

// RemoveTask deletes a task through the data service. The task leaves the
// board when the DELETE event comes back through the change feed.
func (c *Coordinator) RemoveTask(ctx context.Context, taskID int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	title := fmt.Sprintf("task %d", taskID)
	if task, ok := c.store.Task(taskID); ok {
		title = fmt.Sprintf("%q", task.Title)
	}

	if err := c.tasks.DeleteTask(ctx, taskID); err != nil {
		c.log.Error("task delete failed", "task", taskID, "error", err)
		c.notify(NoticeError, fmt.Sprintf("Failed to delete %s", title))
		return entity.NewPersistenceError("delete task", err)
	}

	c.forgetColumn(taskID)
	c.notify(NoticeSuccess, fmt.Sprintf("Deleted %s", title))
	return nil
}

// CheckCompletable returns ErrTaskBlocked when taskID still has incomplete
// blockers. Interactive surfaces call it before offering completion.
func (c *Coordinator) CheckCompletable(taskID int64) error {
	blockers := c.store.BlockedBy(taskID)
	if len(blockers) == 0 {
		return nil
	}
	return fmt.Errorf("%w: task %d waits on %v", entity.ErrTaskBlocked, taskID, blockerIDs(blockers))
}

func blockerIDs(tasks []entity.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
