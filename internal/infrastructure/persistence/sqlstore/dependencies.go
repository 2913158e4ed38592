package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/mapper"
)

// UpsertDependency stores a blockedBy record. Both tasks must exist and
// belong to the same user.
func (s *Store) UpsertDependency(ctx context.Context, dep entity.TaskDependencyRecord) error {
	if err := dep.Validate(); err != nil {
		return err
	}

	var (
		userID string
		event  entity.ChangeEvent
	)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		owner, err := taskOwner(ctx, tx, dep.TaskID)
		if err != nil {
			return err
		}
		blocker, err := taskOwner(ctx, tx, dep.DependentTaskID)
		if err != nil {
			return err
		}
		if owner != blocker {
			return fmt.Errorf("blocking task %d: %w", dep.DependentTaskID, entity.ErrTaskNotFound)
		}
		userID = owner

		old, found, err := loadDependency(ctx, tx, dep.TaskID, dep.DependentTaskID)
		if err != nil {
			return err
		}

		row := mapper.DependencyToRow(dep)
		if found {
			if _, err := sqlx.NamedExecContext(ctx, tx, `UPDATE task_dependencies SET dependency_type = :dependency_type
				WHERE task_id = :task_id AND dependent_task_id = :dependent_task_id`, row); err != nil {
				return dependencyWriteError("update dependency", err)
			}
			event = entity.DependencyChange(entity.EventUpdate, ptr(dep), ptr(old))
			return nil
		}

		if _, err := sqlx.NamedExecContext(ctx, tx, `INSERT INTO task_dependencies (task_id, dependent_task_id, dependency_type)
			VALUES (:task_id, :dependent_task_id, :dependency_type)`, row); err != nil {
			return dependencyWriteError("insert dependency", err)
		}
		event = entity.DependencyChange(entity.EventInsert, ptr(dep), nil)
		return nil
	})
	if err != nil {
		return err
	}

	s.broker.Publish(userID, event)
	return nil
}

// DeleteDependency removes the (taskID, dependentTaskID) record
func (s *Store) DeleteDependency(ctx context.Context, taskID, dependentTaskID int64) error {
	var (
		userID string
		old    entity.TaskDependencyRecord
	)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var (
			found bool
			err   error
		)
		old, found, err = loadDependency(ctx, tx, taskID, dependentTaskID)
		if err != nil {
			return err
		}
		if !found {
			return entity.ErrDependencyNotFound
		}
		if userID, err = taskOwner(ctx, tx, taskID); err != nil {
			return err
		}

		query := tx.Rebind(`DELETE FROM task_dependencies WHERE task_id = ? AND dependent_task_id = ?`)
		if _, err := tx.ExecContext(ctx, query, taskID, dependentTaskID); err != nil {
			return fmt.Errorf("failed to delete dependency: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broker.Publish(userID, entity.DependencyChange(entity.EventDelete, nil, &old))
	return nil
}

func taskOwner(ctx context.Context, q sqlx.ExtContext, id int64) (string, error) {
	var userID string
	if err := sqlx.GetContext(ctx, q, &userID, q.Rebind(`SELECT user_id FROM tasks WHERE id = ?`), id); err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("task %d: %w", id, entity.ErrTaskNotFound)
		}
		return "", fmt.Errorf("failed to select task %d: %w", id, err)
	}
	return userID, nil
}

func loadDependency(ctx context.Context, q sqlx.ExtContext, taskID, dependentTaskID int64) (entity.TaskDependencyRecord, bool, error) {
	var row mapper.DependencyRow
	query := q.Rebind(`SELECT task_id, dependent_task_id, dependency_type
		FROM task_dependencies WHERE task_id = ? AND dependent_task_id = ?`)
	if err := sqlx.GetContext(ctx, q, &row, query, taskID, dependentTaskID); err != nil {
		if isNoRows(err) {
			return entity.TaskDependencyRecord{}, false, nil
		}
		return entity.TaskDependencyRecord{}, false, fmt.Errorf("failed to select dependency: %w", err)
	}
	return mapper.DependencyFromRow(row), true, nil
}

func dependencyWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, ErrDependencyExists)
	case isForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: %w", op, entity.ErrTaskNotFound)
	case isCheckViolation(err):
		return fmt.Errorf("failed to %s: %w", op, entity.ErrSelfDependency)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
