package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"tasktide/internal/domain/repository"
)

// Server exposes the data service over a unix socket. Every request is
// answered with one Response; subscribe keeps the connection open and
// streams Notifications.
type Server struct {
	data       repository.DataService
	socketPath string
	log        *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a new daemon server
func NewServer(data repository.DataService, socketPath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		data:       data,
		socketPath: socketPath,
		log:        log,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start listens on the socket and serves until ctx is done or Stop is called
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Remove a stale socket left by a previous run
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("daemon listening", slog.String("socket", s.socketPath))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.acceptConnections(ctx, listener)
}

// acceptConnections handles incoming connections
func (s *Server) acceptConnections(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection serves one request, or one subscription stream
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			return
		}

		if req.Type == RequestSubscribe {
			s.handleSubscribe(ctx, conn, encoder, &req)
			return
		}

		resp := s.handleRequest(ctx, &req)
		if err := encoder.Encode(resp); err != nil {
			s.log.Warn("failed to encode response", slog.String("type", req.Type), slog.Any("error", err))
			return
		}

		// Only ping keeps the connection open for another request
		if req.Type != RequestPing {
			return
		}
	}
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Type {
	case RequestFetchTasks:
		var payload UserPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		tasks, err := s.data.FetchTasks(ctx, payload.UserID)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: tasks}

	case RequestFetchProjects:
		var payload UserPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		projects, err := s.data.FetchProjects(ctx, payload.UserID)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: projects}

	case RequestUpsertTask:
		var payload TaskPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		task, err := s.data.UpsertTask(ctx, payload.Task)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: task}

	case RequestDeleteTask:
		var payload IDPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.data.DeleteTask(ctx, payload.ID); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestUpsertProject:
		var payload ProjectPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		project, err := s.data.UpsertProject(ctx, payload.Project)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true, Data: project}

	case RequestDeleteProject:
		var payload IDPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.data.DeleteProject(ctx, payload.ID); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestUpsertDependency:
		var payload DependencyPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.data.UpsertDependency(ctx, payload.Dependency); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestDeleteDependency:
		var payload DependencyKeyPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return errorResponse(err)
		}
		if err := s.data.DeleteDependency(ctx, payload.TaskID, payload.DependentTaskID); err != nil {
			return errorResponse(err)
		}
		return &Response{Success: true}

	case RequestPing:
		return &Response{Success: true, Data: "pong"}

	default:
		return &Response{
			Success: false,
			Error:   fmt.Sprintf("unknown request type: %s", req.Type),
		}
	}
}

// handleSubscribe streams change events until the client goes away
func (s *Server) handleSubscribe(ctx context.Context, conn net.Conn, encoder *json.Encoder, req *Request) {
	var payload UserPayload
	if err := decodePayload(req.Payload, &payload); err != nil {
		encoder.Encode(errorResponse(err))
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := s.data.Subscribe(subCtx, payload.UserID)
	if err != nil {
		encoder.Encode(errorResponse(err))
		return
	}

	if err := encoder.Encode(&Response{Success: true, Data: "subscribed"}); err != nil {
		return
	}

	// A read returning means the client hung up
	go func() {
		var discard [1]byte
		conn.Read(discard[:])
		cancel()
	}()

	s.log.Debug("subscriber attached", slog.String("user", payload.UserID))

	for event := range events {
		ev := event
		if err := encoder.Encode(&Notification{Type: NotificationChange, Event: &ev}); err != nil {
			s.log.Debug("subscriber detached", slog.String("user", payload.UserID), slog.Any("error", err))
			return
		}
	}
}

// Stop closes the listener and every open connection
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}

	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// decodePayload decodes request payload into target struct
func decodePayload(payload interface{}, target interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}
