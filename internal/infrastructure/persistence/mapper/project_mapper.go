package mapper

import (
	"fmt"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/serialization"
)

// ProjectToFrontmatter converts a project to its index document metadata
func ProjectToFrontmatter(project entity.Project, taskCount int) map[string]interface{} {
	return map[string]interface{}{
		"id":         project.ID,
		"name":       project.Name,
		"color":      project.Color,
		"task_count": taskCount,
	}
}

// ProjectFromFrontmatter reads a project index document back
func ProjectFromFrontmatter(doc *serialization.FrontmatterDocument) (entity.Project, error) {
	name := doc.GetString("name")
	if name == "" {
		return entity.Project{}, fmt.Errorf("missing project name")
	}

	return entity.Project{
		ID:    int64(doc.GetInt("id")),
		Name:  name,
		Color: doc.GetString("color"),
	}, nil
}
