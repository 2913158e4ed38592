package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
	"tasktide/internal/infrastructure/realtime"
)

const (
	// DriverSQLite selects the embedded SQLite database
	DriverSQLite = "sqlite"
	// DriverPostgres selects a PostgreSQL server reached through pgx
	DriverPostgres = "postgres"

	memoryDSN = ":memory:"
)

//go:embed migrations
var migrations embed.FS

var _ repository.DataService = (*Store)(nil)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the SQL backed data service. Every successful write is
// published to the broker as one or more change events.
type Store struct {
	db      *sqlx.DB
	dialect string
	broker  *realtime.Broker
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for created/updated stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithBroker publishes changes to an existing broker
func WithBroker(broker *realtime.Broker) Option {
	return func(s *Store) {
		s.broker = broker
	}
}

// WithLogger sets the store logger
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Open connects to the database for driver and applies the schema
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err = sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			err = fmt.Errorf("failed to connect to postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, dialect: driver, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.broker == nil {
		s.broker = realtime.NewBroker(realtime.DefaultBuffer, s.log)
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug("storage ready", slog.String("driver", driver))
	return s, nil
}

func openSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is empty")
	}
	if dsn != memoryDSN && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases alive and pragmas in effect
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

func (s *Store) migrate(ctx context.Context) error {
	dir := path.Join("migrations", s.dialect)
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		data, err := fs.ReadFile(migrations, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		for _, stmt := range strings.Split(string(data), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", entry.Name(), err)
			}
		}
	}
	return nil
}

// Close closes the database and disconnects change feed subscribers
func (s *Store) Close() error {
	s.broker.Close()
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Broker returns the broker change events are published to
func (s *Store) Broker() *realtime.Broker {
	return s.broker
}

// Subscribe streams the user's change events
func (s *Store) Subscribe(ctx context.Context, userID string) (<-chan entity.ChangeEvent, error) {
	return s.broker.Subscribe(ctx, userID)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) publish(userID string, events []entity.ChangeEvent) {
	for _, event := range events {
		s.broker.Publish(userID, event)
	}
}
