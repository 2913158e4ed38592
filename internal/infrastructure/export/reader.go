package export

import (
	"fmt"
	"os"
	"path/filepath"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/mapper"
	"tasktide/internal/infrastructure/serialization"
	"tasktide/pkg/filesystem"
)

// TaskDocument is one exported task file read back
type TaskDocument struct {
	Path        string
	Frontmatter mapper.TaskFrontmatter
	Body        string
}

// ProjectDocument is one exported directory read back. Project is nil for
// the inbox.
type ProjectDocument struct {
	Dir     string
	Project *entity.Project
	Tasks   []TaskDocument
}

// Read parses an export tree written by Exporter
func Read(dir string) ([]ProjectDocument, error) {
	dirs, err := filesystem.ListDirs(dir)
	if err != nil {
		return nil, err
	}

	var docs []ProjectDocument
	for _, d := range dirs {
		doc := ProjectDocument{Dir: d}

		indexPath := filepath.Join(d, ProjectFileName)
		if ok, err := filesystem.Exists(indexPath); err != nil {
			return nil, err
		} else if ok {
			parsed, err := parseFile(indexPath)
			if err != nil {
				return nil, err
			}
			project, err := mapper.ProjectFromFrontmatter(parsed)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", indexPath, err)
			}
			doc.Project = &project
		} else if filepath.Base(d) != InboxDirName {
			continue
		}

		files, err := filesystem.ListFiles(d, fileExt)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if filepath.Base(file) == ProjectFileName {
				continue
			}
			parsed, err := parseFile(file)
			if err != nil {
				return nil, err
			}
			fm, body, err := mapper.TaskFromFrontmatter(parsed)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			doc.Tasks = append(doc.Tasks, TaskDocument{Path: file, Frontmatter: fm, Body: body})
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

func parseFile(path string) (*serialization.FrontmatterDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := serialization.ParseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}
