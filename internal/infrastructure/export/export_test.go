package export

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/service"
)

var created = time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

func testState() service.BoardState {
	due := created.Add(72 * time.Hour)
	return service.BoardState{
		Projects: []entity.Project{{ID: 7, Name: "Web Site", Color: "#336699", UserID: "u"}},
		Tasks: []entity.Task{
			{
				ID: 1, Title: "Design header", Description: "Use the **new** logo.",
				ColumnID: entity.Int64Ptr(2), ProjectID: entity.Int64Ptr(7), Created: created, EndDate: &due, UserID: "u",
			},
			{
				ID: 2, Title: "Launch", ColumnID: entity.Int64Ptr(1), ProjectID: entity.Int64Ptr(7), Created: created, UserID: "u",
				Dependencies: []entity.TaskDependencyRecord{{TaskID: 2, DependentTaskID: 1, DependencyType: entity.DependencyBlockedBy}},
			},
			{ID: 3, Title: "Loose end", Created: created, UserID: "u"},
		},
	}
}

func newExporter(t *testing.T) *Exporter {
	t.Helper()
	return New(t.TempDir(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExportWritesTree(t *testing.T) {
	e := newExporter(t)

	result, err := e.Export(testState())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.Projects != 1 || result.Tasks != 3 || result.Removed != 0 {
		t.Errorf("Unexpected result %+v", result)
	}

	for _, rel := range []string{
		"7-web-site/project.md",
		"7-web-site/1-design-header.md",
		"7-web-site/2-launch.md",
		"inbox/3-loose-end.md",
	} {
		if _, err := os.Stat(filepath.Join(e.Dir(), rel)); err != nil {
			t.Errorf("Expected %s to exist: %v", rel, err)
		}
	}
}

func TestExportReadBack(t *testing.T) {
	e := newExporter(t)
	if _, err := e.Export(testState()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	docs, err := Read(e.Dir())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected project dir and inbox, got %d", len(docs))
	}

	project := docs[0]
	if project.Project == nil || project.Project.Name != "Web Site" || project.Project.ID != 7 {
		t.Fatalf("Unexpected project %+v", project.Project)
	}
	if len(project.Tasks) != 2 {
		t.Fatalf("Expected 2 project tasks, got %d", len(project.Tasks))
	}

	header := project.Tasks[0]
	if header.Frontmatter.Column != "Working" || header.Frontmatter.Project != "Web Site" {
		t.Errorf("Unexpected frontmatter %+v", header.Frontmatter)
	}
	if header.Body != "Use the **new** logo." {
		t.Errorf("Expected description body, got %q", header.Body)
	}
	if header.Frontmatter.EndDate == nil || !header.Frontmatter.EndDate.Equal(created.Add(72*time.Hour)) {
		t.Errorf("Expected end date to survive, got %v", header.Frontmatter.EndDate)
	}

	launch := project.Tasks[1]
	if len(launch.Frontmatter.BlockedBy) != 1 || launch.Frontmatter.BlockedBy[0] != 1 {
		t.Errorf("Expected launch blocked by 1, got %v", launch.Frontmatter.BlockedBy)
	}

	inbox := docs[1]
	if inbox.Project != nil || len(inbox.Tasks) != 1 || inbox.Tasks[0].Frontmatter.Column != "Unassigned" {
		t.Errorf("Unexpected inbox %+v", inbox)
	}
}

func TestExportPrunesStaleFiles(t *testing.T) {
	e := newExporter(t)
	if _, err := e.Export(testState()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	foreign := filepath.Join(e.Dir(), "notes")
	if err := os.MkdirAll(foreign, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	state := testState()
	state.Tasks = state.Tasks[1:2]
	state.Tasks[0].Title = "Launch v2"

	result, err := e.Export(state)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// Old title file, deleted header task, and the now empty inbox
	if result.Removed != 3 {
		t.Errorf("Expected 3 removals, got %d", result.Removed)
	}
	if _, err := os.Stat(filepath.Join(e.Dir(), "7-web-site", "2-launch-v2.md")); err != nil {
		t.Errorf("Expected renamed task file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.Dir(), "7-web-site", "2-launch.md")); !os.IsNotExist(err) {
		t.Errorf("Expected old task file to be removed, got %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("Expected unrelated directory to be kept: %v", err)
	}
}
