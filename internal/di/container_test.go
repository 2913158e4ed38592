package di

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"tasktide/internal/application/dto"
	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/config"
	"tasktide/internal/infrastructure/persistence/sqlstore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.DefaultConfig()
	if err != nil {
		t.Fatalf("Failed to build default config: %v", err)
	}
	dir := t.TempDir()
	cfg.Storage.DSN = filepath.Join(dir, "board.db")
	cfg.Daemon.SocketDir = dir
	cfg.Board.UserID = "tester"
	return cfg
}

func TestContainerFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, cleanup, err := InitializeContainer(ctx, testConfig(t), log)
	if err != nil {
		t.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if _, ok := c.Data.(*sqlstore.Store); !ok {
		t.Fatalf("Expected the database to back the container without a daemon, got %T", c.Data)
	}
	if c.Store.Ready() {
		t.Error("Store must not be ready before Load")
	}
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Store.Ready() {
		t.Error("Expected store to be ready after Load")
	}
}

func TestContainerLiveFollowsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, cleanup, err := InitializeContainer(ctx, testConfig(t), log)
	if err != nil {
		t.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if err := c.Live(ctx); err != nil {
		t.Fatalf("Live failed: %v", err)
	}

	saved, err := c.Coordinator.AddTask(ctx, dto.CreateTaskRequest{Title: "Water plants"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := c.Store.Task(saved.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Task never arrived through the change feed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// flakyFeed hands out an already closed feed on the first Subscribe, the
// way the broker drops a subscriber that fell behind.
type flakyFeed struct {
	*sqlstore.Store
	calls atomic.Int32
}

func (f *flakyFeed) Subscribe(ctx context.Context, userID string) (<-chan entity.ChangeEvent, error) {
	if f.calls.Add(1) == 1 {
		closed := make(chan entity.ChangeEvent)
		close(closed)
		return closed, nil
	}
	return f.Store.Subscribe(ctx, userID)
}

func TestContainerLiveResubscribesAfterFeedCloses(t *testing.T) {
	feedRetryDelay = 10 * time.Millisecond
	t.Cleanup(func() { feedRetryDelay = time.Second })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, cleanup, err := InitializeContainer(ctx, testConfig(t), log)
	if err != nil {
		t.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	db, ok := c.Data.(*sqlstore.Store)
	if !ok {
		t.Fatalf("Expected database-backed container, got %T", c.Data)
	}
	feed := &flakyFeed{Store: db}
	c.Data = feed

	if err := c.Live(ctx); err != nil {
		t.Fatalf("Live failed: %v", err)
	}

	saved, err := db.UpsertTask(ctx, entity.Task{Title: "Missed while closed", UserID: "tester"})
	if err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := c.Store.Task(saved.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Task never arrived after the feed closed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	later, err := db.UpsertTask(ctx, entity.Task{Title: "After resubscribe", UserID: "tester"})
	if err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for {
		if _, ok := c.Store.Task(later.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected the reopened feed to deliver new changes")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if calls := feed.calls.Load(); calls < 2 {
		t.Errorf("Expected a resubscribe, got %d subscribe calls", calls)
	}
}
