package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/mapper"
)

const taskColumns = `id, title, description, column_id, start_date, end_date,
	completed, completed_date, created, updated, user_id, project_id`

// FetchTasks returns every task owned by userID with its dependencies
func (s *Store) FetchTasks(ctx context.Context, userID string) ([]entity.Task, error) {
	var rows []mapper.TaskRow
	query := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}

	var depRows []mapper.DependencyRow
	depQuery := s.db.Rebind(`SELECT d.task_id, d.dependent_task_id, d.dependency_type
		FROM task_dependencies d JOIN tasks t ON t.id = d.task_id
		WHERE t.user_id = ? ORDER BY d.task_id, d.dependent_task_id`)
	if err := sqlx.SelectContext(ctx, s.db, &depRows, depQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to select dependencies: %w", err)
	}

	return assembleTasks(rows, depRows)
}

// UpsertTask inserts a task with ID 0 or replaces an existing task of the
// same user. The stored task is returned.
func (s *Store) UpsertTask(ctx context.Context, task entity.Task) (entity.Task, error) {
	if err := task.Validate(); err != nil {
		return entity.Task{}, err
	}
	if task.UserID == "" {
		return entity.Task{}, ErrMissingUser
	}

	var (
		saved  entity.Task
		events []entity.ChangeEvent
	)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if task.ID == 0 {
			if task.Created.IsZero() {
				task.Created = s.now()
			}
			id, err := insertTask(ctx, tx, mapper.TaskToRow(task))
			if err != nil {
				return err
			}
			stored, err := loadTask(ctx, tx, id)
			if err != nil {
				return err
			}
			saved = stored
			events = append(events, entity.TaskChange(entity.EventInsert, ptr(stored.Clone()), nil))
			return nil
		}

		old, err := loadTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		if old.UserID != task.UserID {
			return entity.ErrTaskNotFound
		}

		now := s.now()
		task.Created = old.Created
		task.Updated = &now
		if err := updateTask(ctx, tx, mapper.TaskToRow(task)); err != nil {
			return err
		}
		stored, err := loadTask(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		saved = stored
		events = append(events, entity.TaskChange(entity.EventUpdate, ptr(stored.Clone()), ptr(old)))
		return nil
	})
	if err != nil {
		return entity.Task{}, err
	}

	s.publish(saved.UserID, events)
	return saved, nil
}

// DeleteTask removes a task together with every dependency row naming it
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	var (
		old    entity.Task
		events []entity.ChangeEvent
	)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		old, err = loadTask(ctx, tx, id)
		if err != nil {
			return err
		}

		var deps []mapper.DependencyRow
		query := tx.Rebind(`SELECT task_id, dependent_task_id, dependency_type
			FROM task_dependencies WHERE task_id = ? OR dependent_task_id = ?`)
		if err := sqlx.SelectContext(ctx, tx, &deps, query, id, id); err != nil {
			return fmt.Errorf("failed to select dependencies: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM task_dependencies WHERE task_id = ? OR dependent_task_id = ?`), id, id); err != nil {
			return fmt.Errorf("failed to delete dependencies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		for _, row := range deps {
			dep := mapper.DependencyFromRow(row)
			events = append(events, entity.DependencyChange(entity.EventDelete, nil, &dep))
		}
		events = append(events, entity.TaskChange(entity.EventDelete, nil, ptr(old)))
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(old.UserID, events)
	return nil
}

func insertTask(ctx context.Context, tx *sqlx.Tx, row mapper.TaskRow) (int64, error) {
	query := `INSERT INTO tasks (title, description, column_id, start_date, end_date,
			completed, completed_date, created, updated, user_id, project_id)
		VALUES (:title, :description, :column_id, :start_date, :end_date,
			:completed, :completed_date, :created, :updated, :user_id, :project_id)
		RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, tx, query, row)
	if err != nil {
		return 0, taskWriteError("insert task", err)
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, taskWriteError("insert task", err)
		}
		return 0, fmt.Errorf("insert task returned no id")
	}
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to scan task id: %w", err)
	}
	return id, rows.Close()
}

func updateTask(ctx context.Context, tx *sqlx.Tx, row mapper.TaskRow) error {
	query := `UPDATE tasks SET title = :title, description = :description,
			column_id = :column_id, start_date = :start_date, end_date = :end_date,
			completed = :completed, completed_date = :completed_date,
			updated = :updated, project_id = :project_id
		WHERE id = :id AND user_id = :user_id`

	res, err := sqlx.NamedExecContext(ctx, tx, query, row)
	if err != nil {
		return taskWriteError("update task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

func taskWriteError(op string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("failed to %s: %w", op, entity.ErrProjectNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// loadTask reads one task row and its dependencies
func loadTask(ctx context.Context, q sqlx.ExtContext, id int64) (entity.Task, error) {
	var row mapper.TaskRow
	query := q.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if isNoRows(err) {
			return entity.Task{}, entity.ErrTaskNotFound
		}
		return entity.Task{}, fmt.Errorf("failed to select task %d: %w", id, err)
	}

	var depRows []mapper.DependencyRow
	depQuery := q.Rebind(`SELECT task_id, dependent_task_id, dependency_type
		FROM task_dependencies WHERE task_id = ? ORDER BY dependent_task_id`)
	if err := sqlx.SelectContext(ctx, q, &depRows, depQuery, id); err != nil {
		return entity.Task{}, fmt.Errorf("failed to select dependencies of task %d: %w", id, err)
	}

	tasks, err := assembleTasks([]mapper.TaskRow{row}, depRows)
	if err != nil {
		return entity.Task{}, err
	}
	return tasks[0], nil
}

// loadTasks reads the given tasks and their dependencies
func loadTasks(ctx context.Context, q sqlx.ExtContext, ids []int64) ([]entity.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+taskColumns+` FROM tasks WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}
	var rows []mapper.TaskRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}

	depQuery, depArgs, err := sqlx.In(`SELECT task_id, dependent_task_id, dependency_type
		FROM task_dependencies WHERE task_id IN (?) ORDER BY task_id, dependent_task_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency query: %w", err)
	}
	var depRows []mapper.DependencyRow
	if err := sqlx.SelectContext(ctx, q, &depRows, q.Rebind(depQuery), depArgs...); err != nil {
		return nil, fmt.Errorf("failed to select dependencies: %w", err)
	}

	return assembleTasks(rows, depRows)
}

func assembleTasks(rows []mapper.TaskRow, depRows []mapper.DependencyRow) ([]entity.Task, error) {
	byTask := make(map[int64][]entity.TaskDependencyRecord, len(depRows))
	for _, row := range depRows {
		byTask[row.TaskID] = append(byTask[row.TaskID], mapper.DependencyFromRow(row))
	}

	tasks := make([]entity.Task, 0, len(rows))
	for _, row := range rows {
		task, err := mapper.TaskFromRow(row)
		if err != nil {
			return nil, err
		}
		task.Dependencies = byTask[row.ID]
		if task.Dependencies == nil {
			task.Dependencies = []entity.TaskDependencyRecord{}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func ptr[T any](v T) *T {
	return &v
}

// TaskOwner returns the user id owning the task
func (s *Store) TaskOwner(ctx context.Context, id int64) (string, error) {
	return taskOwner(ctx, s.db, id)
}
