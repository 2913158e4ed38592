package board

import (
	"context"
	"fmt"
	"strings"

	"tasktide/internal/domain/entity"
)

// AddProject creates a project. It becomes the active project once the
// INSERT arrives through the change feed.
func (c *Coordinator) AddProject(ctx context.Context, name, color string) (entity.Project, error) {
	if err := c.ensureLoaded(); err != nil {
		return entity.Project{}, err
	}

	project := entity.Project{
		Name:   strings.TrimSpace(name),
		Color:  strings.TrimSpace(color),
		UserID: c.userID,
	}
	if err := project.Validate(); err != nil {
		return entity.Project{}, err
	}

	saved, err := c.projects.UpsertProject(ctx, project)
	if err != nil {
		c.notify(NoticeError, "An error occurred while saving the project.")
		return entity.Project{}, entity.NewPersistenceError("upsert project", err)
	}

	c.notify(NoticeSuccess, fmt.Sprintf("Project %q created.", saved.Name))
	return saved, nil
}

// EditProject renames or recolors a project. Empty arguments keep the
// current value.
func (c *Coordinator) EditProject(ctx context.Context, projectID int64, name, color string) (entity.Project, error) {
	if err := c.ensureLoaded(); err != nil {
		return entity.Project{}, err
	}

	project, ok := c.store.Project(projectID)
	if !ok {
		return entity.Project{}, fmt.Errorf("%w: %d", entity.ErrProjectNotFound, projectID)
	}
	if name = strings.TrimSpace(name); name != "" {
		project.Name = name
	}
	if color = strings.TrimSpace(color); color != "" {
		project.Color = color
	}
	if err := project.Validate(); err != nil {
		return entity.Project{}, err
	}

	saved, err := c.projects.UpsertProject(ctx, project)
	if err != nil {
		c.notify(NoticeError, "An error occurred while saving the project.")
		return entity.Project{}, entity.NewPersistenceError("upsert project", err)
	}

	c.notify(NoticeSuccess, "Project saved successfully.")
	return saved, nil
}

// RemoveProject deletes a project. Like task deletion it is not optimistic.
func (c *Coordinator) RemoveProject(ctx context.Context, projectID int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	name := fmt.Sprintf("project %d", projectID)
	if project, ok := c.store.Project(projectID); ok {
		name = fmt.Sprintf("%q", project.Name)
	}

	if err := c.projects.DeleteProject(ctx, projectID); err != nil {
		c.log.Error("project delete failed", "project", projectID, "error", err)
		c.notify(NoticeError, fmt.Sprintf("Failed to delete %s", name))
		return entity.NewPersistenceError("delete project", err)
	}

	c.notify(NoticeSuccess, fmt.Sprintf("Deleted %s", name))
	return nil
}

// SelectProject switches the board to another project
func (c *Coordinator) SelectProject(projectID *int64) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	return c.store.SelectProject(projectID)
}
