package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/mapper"
)

// FetchProjects returns every project owned by userID ordered by id
func (s *Store) FetchProjects(ctx context.Context, userID string) ([]entity.Project, error) {
	var rows []mapper.ProjectRow
	query := s.db.Rebind(`SELECT id, name, color, user_id FROM projects WHERE user_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}

	projects := make([]entity.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, mapper.ProjectFromRow(row))
	}
	return projects, nil
}

// UpsertProject inserts a project with ID 0 or replaces an existing one
func (s *Store) UpsertProject(ctx context.Context, project entity.Project) (entity.Project, error) {
	if err := project.Validate(); err != nil {
		return entity.Project{}, err
	}
	if project.UserID == "" {
		return entity.Project{}, ErrMissingUser
	}

	var event entity.ChangeEvent
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row := mapper.ProjectToRow(project)

		if project.ID == 0 {
			query := tx.Rebind(`INSERT INTO projects (name, color, user_id) VALUES (?, ?, ?) RETURNING id`)
			if err := tx.QueryRowxContext(ctx, query, row.Name, row.Color, row.UserID).Scan(&project.ID); err != nil {
				return fmt.Errorf("failed to insert project: %w", err)
			}
			event = entity.ProjectChange(entity.EventInsert, ptr(project), nil)
			return nil
		}

		old, err := loadProject(ctx, tx, project.ID)
		if err != nil {
			return err
		}
		if old.UserID != project.UserID {
			return entity.ErrProjectNotFound
		}

		res, err := sqlx.NamedExecContext(ctx, tx,
			`UPDATE projects SET name = :name, color = :color WHERE id = :id AND user_id = :user_id`, row)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			return entity.ErrProjectNotFound
		}
		event = entity.ProjectChange(entity.EventUpdate, ptr(project), ptr(old))
		return nil
	})
	if err != nil {
		return entity.Project{}, err
	}

	s.broker.Publish(project.UserID, event)
	return project, nil
}

// DeleteProject removes a project. Its tasks stay, detached from any project,
// and an UPDATE is published for each of them.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	var (
		old    entity.Project
		events []entity.ChangeEvent
	)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		old, err = loadProject(ctx, tx, id)
		if err != nil {
			return err
		}

		var taskIDs []int64
		if err := sqlx.SelectContext(ctx, tx, &taskIDs, tx.Rebind(`SELECT id FROM tasks WHERE project_id = ? ORDER BY id`), id); err != nil {
			return fmt.Errorf("failed to select project tasks: %w", err)
		}
		before, err := loadTasks(ctx, tx, taskIDs)
		if err != nil {
			return err
		}

		now := s.now().Format(mapper.TimeLayout)
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE tasks SET project_id = NULL, updated = ? WHERE project_id = ?`), now, id); err != nil {
			return fmt.Errorf("failed to detach project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM projects WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		after, err := loadTasks(ctx, tx, taskIDs)
		if err != nil {
			return err
		}
		for i := range after {
			events = append(events, entity.TaskChange(entity.EventUpdate, ptr(after[i]), ptr(before[i])))
		}
		events = append(events, entity.ProjectChange(entity.EventDelete, nil, ptr(old)))
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(old.UserID, events)
	return nil
}

func loadProject(ctx context.Context, q sqlx.ExtContext, id int64) (entity.Project, error) {
	var row mapper.ProjectRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind(`SELECT id, name, color, user_id FROM projects WHERE id = ?`), id); err != nil {
		if isNoRows(err) {
			return entity.Project{}, entity.ErrProjectNotFound
		}
		return entity.Project{}, fmt.Errorf("failed to select project %d: %w", id, err)
	}
	return mapper.ProjectFromRow(row), nil
}

// ProjectOwner returns the user id owning the project
func (s *Store) ProjectOwner(ctx context.Context, id int64) (string, error) {
	project, err := loadProject(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	return project.UserID, nil
}
