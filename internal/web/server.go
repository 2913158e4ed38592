package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"tasktide/internal/domain/entity"
)

// RouterConfig carries the settings the API routes depend on
type RouterConfig struct {
	Columns        []entity.Column
	AllowedOrigins []string
	Timeout        time.Duration
	Now            func() time.Time
}

// NewRouter builds the HTTP API. Everything under /api except /api/ping
// requires a bearer token whose subject is the board user id.
func NewRouter(log *slog.Logger, data Backend, tokens TokenVerifier, cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = entity.DefaultColumns()
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/ping", NewPingHandler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(log, tokens))

	api.HandleFunc("/tasks", NewListTasksHandler(log, data, cfg.Timeout)).Methods(http.MethodGet)
	api.HandleFunc("/tasks", NewUpsertTaskHandler(log, data, cfg.Columns, cfg.Timeout, cfg.Now)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id:[0-9]+}", NewDeleteTaskHandler(log, data, cfg.Timeout)).Methods(http.MethodDelete)

	api.HandleFunc("/projects", NewListProjectsHandler(log, data, cfg.Timeout)).Methods(http.MethodGet)
	api.HandleFunc("/projects", NewUpsertProjectHandler(log, data, cfg.Timeout)).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}", NewDeleteProjectHandler(log, data, cfg.Timeout)).Methods(http.MethodDelete)

	api.HandleFunc("/dependencies", NewUpsertDependencyHandler(log, data, cfg.Timeout)).Methods(http.MethodPost)
	api.HandleFunc("/dependencies", NewDeleteDependencyHandler(log, data, cfg.Timeout)).Methods(http.MethodDelete)

	api.HandleFunc("/board", NewBoardHandler(log, data, cfg.Columns, cfg.Timeout)).Methods(http.MethodGet)
	api.HandleFunc("/ws", NewChangeFeedHandler(log, data, cfg.AllowedOrigins))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

// Server runs the HTTP API until its context is cancelled
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer wraps handler in an http.Server listening on addr
func NewServer(addr string, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.log.Info("web api listening", slog.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web api: %w", err)
	}
	return nil
}
