package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/sqlstore"
)

func startServer(t *testing.T) (*Client, *sqlstore.Store) {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	// Unix socket paths are length limited; keep them short
	dir, err := os.MkdirTemp("", "ttd")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	socketPath := filepath.Join(dir, "d.sock")

	ctx, cancel := context.WithCancel(context.Background())
	server := NewServer(store, socketPath, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(ctx) }()

	client := NewClient(socketPath)
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping(context.Background()) != nil {
		if time.Now().After(deadline) {
			t.Fatal("Daemon did not come up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Cleanup(func() {
		cancel()
		<-errCh
		store.Close()
		os.RemoveAll(dir)
	})
	return client, store
}

func TestClientRoundTrip(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	project, err := client.UpsertProject(ctx, entity.Project{Name: "Ops", Color: "#123456", UserID: "u1"})
	if err != nil {
		t.Fatalf("Failed to upsert project: %v", err)
	}

	task, err := client.UpsertTask(ctx, entity.Task{Title: "Rotate keys", UserID: "u1", ProjectID: entity.Int64Ptr(project.ID)})
	if err != nil {
		t.Fatalf("Failed to upsert task: %v", err)
	}
	blocker, err := client.UpsertTask(ctx, entity.Task{Title: "Audit", UserID: "u1"})
	if err != nil {
		t.Fatalf("Failed to upsert task: %v", err)
	}

	dep := entity.TaskDependencyRecord{TaskID: task.ID, DependentTaskID: blocker.ID, DependencyType: entity.DependencyBlockedBy}
	if err := client.UpsertDependency(ctx, dep); err != nil {
		t.Fatalf("Failed to upsert dependency: %v", err)
	}

	tasks, err := client.FetchTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to fetch tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if len(tasks[0].Dependencies) != 1 || tasks[0].Dependencies[0].DependentTaskID != blocker.ID {
		t.Errorf("Expected dependency on %d, got %v", blocker.ID, tasks[0].Dependencies)
	}

	projects, err := client.FetchProjects(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to fetch projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Ops" {
		t.Errorf("Unexpected projects %+v", projects)
	}

	if err := client.DeleteDependency(ctx, task.ID, blocker.ID); err != nil {
		t.Fatalf("Failed to delete dependency: %v", err)
	}
	if err := client.DeleteTask(ctx, blocker.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if err := client.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}
}

func TestClientRestoresSentinelErrors(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	if err := client.DeleteTask(ctx, 404); !errors.Is(err, entity.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if _, err := client.UpsertTask(ctx, entity.Task{Title: "", UserID: "u1"}); !errors.Is(err, entity.ErrEmptyTaskTitle) {
		t.Errorf("Expected ErrEmptyTaskTitle, got %v", err)
	}
	if err := client.DeleteDependency(ctx, 1, 2); !errors.Is(err, entity.ErrDependencyNotFound) {
		t.Errorf("Expected ErrDependencyNotFound, got %v", err)
	}
}

func TestClientSubscribe(t *testing.T) {
	client, store := startServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := client.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	// Wait until the daemon side has registered with the broker
	deadline := time.Now().Add(2 * time.Second)
	for store.Broker().SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	task, err := client.UpsertTask(context.Background(), entity.Task{Title: "Ship", UserID: "u1"})
	if err != nil {
		t.Fatalf("Failed to upsert task: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != entity.EventInsert || ev.NewTask == nil || ev.NewTask.ID != task.ID {
			t.Errorf("Expected INSERT of task %d, got %+v", task.ID, ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for change notification")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("Expected stream to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not close after cancel")
	}
}

func TestUnknownRequest(t *testing.T) {
	client, _ := startServer(t)
	err := client.sendRequest(context.Background(), &Request{Type: "bogus"}, nil)
	if err == nil {
		t.Error("Expected error for unknown request type")
	}
}
