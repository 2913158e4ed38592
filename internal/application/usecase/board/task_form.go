package board

import (
	"context"
	"fmt"
	"strings"

	"tasktide/internal/application/dto"
	"tasktide/internal/domain/entity"
)

// AddTask validates and stores a new task. The board picks it up from the
// change feed. Without an explicit project the task joins the active one.
func (c *Coordinator) AddTask(ctx context.Context, req dto.CreateTaskRequest) (entity.Task, error) {
	if err := c.ensureLoaded(); err != nil {
		return entity.Task{}, err
	}

	now := c.now()
	task := entity.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Created:     now,
		UserID:      c.userID,
		ProjectID:   entity.CloneID(req.ProjectID),
	}
	if task.ProjectID == nil {
		task.ProjectID = c.store.ActiveProjectID()
	}

	column := entity.CloneID(req.ColumnID)
	if req.Completed {
		column = entity.Int64Ptr(entity.CompletedColumnID)
	}
	if err := c.checkColumn(column); err != nil {
		return entity.Task{}, err
	}
	task.MoveToColumn(column, now)

	if err := task.Validate(); err != nil {
		return entity.Task{}, err
	}

	saved, err := c.tasks.UpsertTask(ctx, task)
	if err != nil {
		c.notify(NoticeError, "An error occurred while saving the task.")
		return entity.Task{}, entity.NewPersistenceError("upsert task", err)
	}

	c.notify(NoticeSuccess, fmt.Sprintf("Task %q saved.", saved.Title))
	return saved, nil
}

// EditTask applies an edit form to an existing task. Completing the task in
// the form moves it to the terminal column; reopening it moves it back.
func (c *Coordinator) EditTask(ctx context.Context, taskID int64, req dto.UpdateTaskRequest) (entity.Task, error) {
	if err := c.ensureLoaded(); err != nil {
		return entity.Task{}, err
	}

	current, ok := c.store.Task(taskID)
	if !ok {
		return entity.Task{}, fmt.Errorf("%w: %d", entity.ErrTaskNotFound, taskID)
	}

	edited := current.Clone()
	if req.Title != nil {
		edited.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		edited.Description = *req.Description
	}
	if req.ClearDates {
		edited.StartDate = nil
		edited.EndDate = nil
	}
	if req.StartDate != nil {
		start := *req.StartDate
		edited.StartDate = &start
	}
	if req.EndDate != nil {
		end := *req.EndDate
		edited.EndDate = &end
	}
	if req.ProjectID != nil {
		edited.ProjectID = entity.CloneID(req.ProjectID)
	}

	column := resolveEditColumn(current, req, c.restoreColumn(taskID))
	if err := c.checkColumn(column); err != nil {
		return entity.Task{}, err
	}
	undo := func() {}
	if column != nil && *column == entity.CompletedColumnID && !current.InColumn(column) {
		undo = c.rememberColumn(taskID, current.ColumnID)
	}
	if !edited.InColumn(column) || edited.Completed != (column != nil && *column == entity.CompletedColumnID) {
		edited.MoveToColumn(column, c.now())
	}

	if err := edited.Validate(); err != nil {
		undo()
		return entity.Task{}, err
	}

	saved, err := c.tasks.UpsertTask(ctx, edited)
	if err != nil {
		undo()
		c.notify(NoticeError, "An error occurred while saving the task.")
		return entity.Task{}, entity.NewPersistenceError("upsert task", err)
	}

	c.notify(NoticeSuccess, "Task saved successfully.")
	return saved, nil
}

// resolveEditColumn decides the column an edited task ends up in.
func resolveEditColumn(current entity.Task, req dto.UpdateTaskRequest, reopenColumn *int64) *int64 {
	column := entity.CloneID(current.ColumnID)
	if req.SetColumn {
		column = entity.CloneID(req.ColumnID)
	}

	if req.Completed == nil {
		return column
	}

	terminal := column != nil && *column == entity.CompletedColumnID
	switch {
	case *req.Completed:
		return entity.Int64Ptr(entity.CompletedColumnID)
	case terminal && req.SetColumn && !entity.SameID(req.ColumnID, current.ColumnID):
		// Explicitly moved to the terminal column while unchecking: the
		// column choice wins.
		return column
	case terminal:
		return reopenColumn
	default:
		return column
	}
}

func (c *Coordinator) checkColumn(column *int64) error {
	if column == nil {
		return nil
	}
	if _, ok := c.store.Column(*column); !ok {
		return fmt.Errorf("%w: %d", entity.ErrColumnNotFound, *column)
	}
	return nil
}
