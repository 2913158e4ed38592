package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/service"
	"tasktide/internal/infrastructure/persistence/mapper"
	"tasktide/internal/infrastructure/serialization"
	"tasktide/pkg/filesystem"
	"tasktide/pkg/slug"
)

const (
	// ProjectFileName is the index document of a project directory
	ProjectFileName = "project.md"

	// InboxDirName holds tasks that belong to no project
	InboxDirName = "inbox"

	fileExt  = ".md"
	filePerm = 0644
)

// Result summarizes one export run
type Result struct {
	Projects int `json:"projects" yaml:"projects"`
	Tasks    int `json:"tasks" yaml:"tasks"`
	Removed  int `json:"removed" yaml:"removed"`
}

// Exporter writes a board snapshot as a tree of markdown files:
//
//	<dir>/<id>-<project>/project.md
//	<dir>/<id>-<project>/<id>-<task>.md
//	<dir>/inbox/<id>-<task>.md
type Exporter struct {
	dir     string
	columns []entity.Column
	log     *slog.Logger
}

// New creates an exporter rooted at dir
func New(dir string, columns []entity.Column, log *slog.Logger) *Exporter {
	if len(columns) == 0 {
		columns = entity.DefaultColumns()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{dir: dir, columns: columns, log: log}
}

// Dir returns the export root
func (e *Exporter) Dir() string {
	return e.dir
}

// Export writes every project and task of state. Files left over from an
// earlier export whose task or project no longer exists are removed.
func (e *Exporter) Export(state service.BoardState) (Result, error) {
	var result Result

	if err := filesystem.EnsureDir(e.dir, 0755); err != nil {
		return result, err
	}

	written := make(map[string]map[string]bool)
	keep := func(dir, file string) {
		if written[dir] == nil {
			written[dir] = make(map[string]bool)
		}
		written[dir][file] = true
	}

	projectDirs := make(map[int64]string, len(state.Projects))
	counts := make(map[int64]int)
	for _, t := range state.Tasks {
		if t.ProjectID != nil {
			counts[*t.ProjectID]++
		}
	}

	for _, p := range state.Projects {
		dir := filepath.Join(e.dir, slug.WithID(p.ID, p.Name))
		projectDirs[p.ID] = dir

		data, err := serialization.SerializeFrontmatter(mapper.ProjectToFrontmatter(p, counts[p.ID]), "# "+p.Name+"\n")
		if err != nil {
			return result, fmt.Errorf("failed to serialize project %d: %w", p.ID, err)
		}
		path := filepath.Join(dir, ProjectFileName)
		if err := filesystem.SafeWrite(path, data, filePerm); err != nil {
			return result, fmt.Errorf("failed to write project %d: %w", p.ID, err)
		}
		keep(dir, ProjectFileName)
		result.Projects++
	}

	inbox := filepath.Join(e.dir, InboxDirName)
	for _, t := range state.Tasks {
		dir := inbox
		projectName := ""
		if t.ProjectID != nil {
			if pd, ok := projectDirs[*t.ProjectID]; ok {
				dir = pd
				project, _ := state.FindProject(*t.ProjectID)
				projectName = project.Name
			}
		}

		name := slug.WithID(t.ID, t.Title) + fileExt
		if err := e.writeTask(filepath.Join(dir, name), t, projectName); err != nil {
			return result, err
		}
		keep(dir, name)
		result.Tasks++
	}

	removed, err := e.prune(written)
	if err != nil {
		return result, err
	}
	result.Removed = removed

	e.log.Info("board exported", "dir", e.dir, "projects", result.Projects, "tasks", result.Tasks, "removed", result.Removed)
	return result, nil
}

func (e *Exporter) writeTask(path string, task entity.Task, projectName string) error {
	column := columnTitle(e.columns, task.ColumnID)

	frontmatter, body := mapper.TaskToFrontmatter(task, column, projectName)
	data, err := serialization.SerializeFrontmatter(frontmatter, body)
	if err != nil {
		return fmt.Errorf("failed to serialize task %d: %w", task.ID, err)
	}
	if err := filesystem.SafeWrite(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write task %d: %w", task.ID, err)
	}
	return nil
}

// prune removes stale task files and directories of deleted projects.
// Directories that were not created by an export are left alone.
func (e *Exporter) prune(written map[string]map[string]bool) (int, error) {
	dirs, err := filesystem.ListDirs(e.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, dir := range dirs {
		base := filepath.Base(dir)
		_, isProject := slug.ParseID(base)
		if !isProject && base != InboxDirName {
			continue
		}

		keep, exported := written[dir]
		if !exported {
			if err := filesystem.RemoveDir(dir); err != nil {
				return removed, err
			}
			e.log.Debug("removed stale export directory", "dir", dir)
			removed++
			continue
		}

		files, err := filesystem.ListFiles(dir, fileExt)
		if err != nil {
			return removed, err
		}
		for _, file := range files {
			name := filepath.Base(file)
			if keep[name] {
				continue
			}
			if _, ok := slug.ParseID(name); !ok && name != ProjectFileName {
				continue
			}
			if err := os.Remove(file); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", file, err)
			}
			removed++
		}
	}
	return removed, nil
}

func columnTitle(columns []entity.Column, id *int64) string {
	if id == nil {
		return "Unassigned"
	}
	if c, ok := entity.FindColumn(columns, *id); ok {
		return c.Title
	}
	return "Unassigned"
}
