package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tasktide/internal/application/dialog"
	"tasktide/internal/application/store"
	"tasktide/internal/application/usecase/board"
	"tasktide/internal/application/usecase/task"
	"tasktide/internal/daemon"
	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
	"tasktide/internal/infrastructure/config"
	"tasktide/internal/infrastructure/persistence/sqlstore"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *slog.Logger

	// Data service: the daemon when it is running, the database otherwise
	Data repository.DataService

	// Board state
	Store   *store.KanbanStore
	Dialogs *dialog.Coordinator
	Notices *board.NoticeRecorder

	// Use Cases
	Coordinator *board.Coordinator
	ListTasks   *task.ListTasksUseCase
	GetBoard    *task.GetBoardUseCase
}

// Load fetches the configured user's board
func (c *Container) Load(ctx context.Context) error {
	if err := c.Store.Load(ctx, c.Config.Board.UserID, c.Data, c.Data); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	return nil
}

// Live loads the board and keeps it in sync with the change feed until ctx
// is done. The subscription is opened before the fetch so no change between
// the two is lost; events already reflected in the fetch are no-ops.
func (c *Container) Live(ctx context.Context) error {
	events, err := c.Data.Subscribe(ctx, c.Config.Board.UserID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}
	if err := c.Load(ctx); err != nil {
		return err
	}

	go c.follow(ctx, events)
	return nil
}

// feedRetryDelay is the first wait before resubscribing to a closed feed.
// It doubles up to maxFeedRetryDelay.
var (
	feedRetryDelay    = time.Second
	maxFeedRetryDelay = 30 * time.Second
)

// follow applies change events until ctx is done. A feed that closes under
// it (a dropped slow subscriber, a lost daemon connection) is reopened and
// the board reloaded, since events may have been missed in between.
func (c *Container) follow(ctx context.Context, events <-chan entity.ChangeEvent) {
	for {
		err := c.Store.Run(ctx, events)
		if ctx.Err() != nil {
			return
		}
		if !errors.Is(err, store.ErrFeedClosed) {
			c.Logger.Error("change feed stopped", "error", err)
			return
		}
		c.Logger.Warn("change feed closed, resubscribing")

		events = c.resubscribe(ctx)
		if events == nil {
			return
		}
	}
}

// resubscribe retries Subscribe and Load until both succeed or ctx is done
func (c *Container) resubscribe(ctx context.Context) <-chan entity.ChangeEvent {
	delay := feedRetryDelay
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		events, err := c.Data.Subscribe(ctx, c.Config.Board.UserID)
		if err == nil {
			if err = c.Load(ctx); err == nil {
				c.Logger.Info("change feed restored")
				return events
			}
		}
		c.Logger.Warn("resubscribe failed", "error", err, "retry_in", delay)

		delay *= 2
		if delay > maxFeedRetryDelay {
			delay = maxFeedRetryDelay
		}
	}
}

// Provider functions

// ProvideDataService prefers a running daemon and falls back to opening
// the configured database directly.
func ProvideDataService(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.DataService, func(), error) {
	client := daemon.NewClient(cfg.SocketPath())
	if err := client.Ping(ctx); err == nil {
		log.Debug("using daemon", "socket", cfg.SocketPath())
		return client, func() {}, nil
	}

	db, err := sqlstore.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, sqlstore.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	log.Debug("using database directly", "driver", cfg.Storage.Driver)
	return db, func() { db.Close() }, nil
}

func ProvideStore(cfg *config.Config, log *slog.Logger) *store.KanbanStore {
	return store.New(cfg.Columns(), log)
}

func ProvideDialogs(cfg *config.Config) *dialog.Coordinator {
	return dialog.NewCoordinator(dialog.WithDebounce(cfg.DialogDebounce()))
}

func ProvideNotices() *board.NoticeRecorder {
	return &board.NoticeRecorder{}
}

func ProvideCoordinator(
	kanban *store.KanbanStore,
	data repository.DataService,
	notices *board.NoticeRecorder,
	cfg *config.Config,
	log *slog.Logger,
) *board.Coordinator {
	return board.NewCoordinator(kanban, data, notices, cfg.Board.UserID, board.WithLogger(log))
}
