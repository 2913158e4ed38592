package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "note.md")

	if err := SafeWrite(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("SafeWrite failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected hello, got %q", data)
	}

	if err := SafeWrite(path, []byte("again"), 0644); err != nil {
		t.Fatalf("SafeWrite overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "again" {
		t.Errorf("Expected again, got %q", data)
	}

	files, err := ListFiles(filepath.Dir(path), ".md")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected no temp files left behind, got %v", files)
	}
}

func TestListFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.md", ".hidden.md", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := EnsureDir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}

	files, err := ListFiles(dir, ".md")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.md" {
		t.Errorf("Expected [a.md b.md], got %v", files)
	}

	dirs, err := ListDirs(dir)
	if err != nil {
		t.Fatalf("ListDirs failed: %v", err)
	}
	if len(dirs) != 1 || filepath.Base(dirs[0]) != "sub" {
		t.Errorf("Expected [sub], got %v", dirs)
	}

	if err := RemoveDir(filepath.Join(dir, "sub")); err != nil {
		t.Fatalf("RemoveDir failed: %v", err)
	}
	if ok, _ := Exists(filepath.Join(dir, "sub")); ok {
		t.Error("Expected sub to be removed")
	}
}
