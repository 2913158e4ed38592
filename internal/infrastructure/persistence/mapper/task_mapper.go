package mapper

import (
	"fmt"
	"time"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/serialization"
)

// TaskFrontmatter is the exported markdown metadata of a task
type TaskFrontmatter struct {
	ID            int64      `yaml:"id"`
	Title         string     `yaml:"title"`
	Column        string     `yaml:"column"`
	Project       string     `yaml:"project,omitempty"`
	Completed     bool       `yaml:"completed"`
	Created       time.Time  `yaml:"created"`
	StartDate     *time.Time `yaml:"start_date,omitempty"`
	EndDate       *time.Time `yaml:"end_date,omitempty"`
	CompletedDate *time.Time `yaml:"completed_date,omitempty"`
	BlockedBy     []int64    `yaml:"blocked_by,omitempty"`
}

// TaskToFrontmatter converts a Task entity to frontmatter and markdown body.
// columnTitle and projectName are resolved by the caller.
func TaskToFrontmatter(task entity.Task, columnTitle, projectName string) (map[string]interface{}, string) {
	frontmatter := map[string]interface{}{
		"id":        task.ID,
		"title":     task.Title,
		"column":    columnTitle,
		"completed": task.Completed,
		"created":   task.Created.Format(time.RFC3339),
	}

	if projectName != "" {
		frontmatter["project"] = projectName
	}
	if task.StartDate != nil {
		frontmatter["start_date"] = task.StartDate.Format(time.RFC3339)
	}
	if task.EndDate != nil {
		frontmatter["end_date"] = task.EndDate.Format(time.RFC3339)
	}
	if task.CompletedDate != nil {
		frontmatter["completed_date"] = task.CompletedDate.Format(time.RFC3339)
	}

	var blockers []int64
	for _, dep := range task.Dependencies {
		if dep.IsBlocking() {
			blockers = append(blockers, dep.DependentTaskID)
		}
	}
	if len(blockers) > 0 {
		frontmatter["blocked_by"] = blockers
	}

	return frontmatter, task.Description
}

// TaskFromFrontmatter reads an exported task document back
func TaskFromFrontmatter(doc *serialization.FrontmatterDocument) (TaskFrontmatter, string, error) {
	fm := TaskFrontmatter{
		ID:        int64(doc.GetInt("id")),
		Title:     doc.GetString("title"),
		Column:    doc.GetString("column"),
		Project:   doc.GetString("project"),
		Completed: doc.GetBool("completed"),
	}

	if fm.Title == "" {
		return TaskFrontmatter{}, "", fmt.Errorf("missing task title")
	}

	created, err := doc.GetTime("created")
	if err != nil {
		return TaskFrontmatter{}, "", fmt.Errorf("invalid created: %w", err)
	}
	if created != nil {
		fm.Created = *created
	}

	if fm.StartDate, err = doc.GetTime("start_date"); err != nil {
		return TaskFrontmatter{}, "", fmt.Errorf("invalid start_date: %w", err)
	}
	if fm.EndDate, err = doc.GetTime("end_date"); err != nil {
		return TaskFrontmatter{}, "", fmt.Errorf("invalid end_date: %w", err)
	}
	if fm.CompletedDate, err = doc.GetTime("completed_date"); err != nil {
		return TaskFrontmatter{}, "", fmt.Errorf("invalid completed_date: %w", err)
	}

	for _, id := range doc.GetIntSlice("blocked_by") {
		fm.BlockedBy = append(fm.BlockedBy, int64(id))
	}

	return fm, doc.Content, nil
}
