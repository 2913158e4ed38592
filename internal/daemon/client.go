package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
)

var _ repository.DataService = (*Client)(nil)

// DefaultTimeout bounds a single request when ctx has no deadline
const DefaultTimeout = 10 * time.Second

// Client is a DataService that talks to the daemon socket
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new daemon client
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
	}
}

// dial connects to the socket and applies the request deadline
func (c *Client) dial(ctx context.Context, deadline bool) (net.Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	if deadline {
		until := time.Now().Add(c.timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(until) {
			until = d
		}
		conn.SetDeadline(until)
	}
	return conn, nil
}

// sendRequest sends a request to the daemon and decodes the response data into out
func (c *Client) sendRequest(ctx context.Context, req *Request, out interface{}) error {
	conn, err := c.dial(ctx, true)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	var resp rawResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		return responseError(&resp)
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// FetchTasks retrieves every task of the user
func (c *Client) FetchTasks(ctx context.Context, userID string) ([]entity.Task, error) {
	var tasks []entity.Task
	err := c.sendRequest(ctx, &Request{Type: RequestFetchTasks, Payload: UserPayload{UserID: userID}}, &tasks)
	return tasks, err
}

// FetchProjects retrieves every project of the user
func (c *Client) FetchProjects(ctx context.Context, userID string) ([]entity.Project, error) {
	var projects []entity.Project
	err := c.sendRequest(ctx, &Request{Type: RequestFetchProjects, Payload: UserPayload{UserID: userID}}, &projects)
	return projects, err
}

// UpsertTask inserts or replaces a task
func (c *Client) UpsertTask(ctx context.Context, task entity.Task) (entity.Task, error) {
	var saved entity.Task
	err := c.sendRequest(ctx, &Request{Type: RequestUpsertTask, Payload: TaskPayload{Task: task}}, &saved)
	return saved, err
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.sendRequest(ctx, &Request{Type: RequestDeleteTask, Payload: IDPayload{ID: id}}, nil)
}

// UpsertProject inserts or replaces a project
func (c *Client) UpsertProject(ctx context.Context, project entity.Project) (entity.Project, error) {
	var saved entity.Project
	err := c.sendRequest(ctx, &Request{Type: RequestUpsertProject, Payload: ProjectPayload{Project: project}}, &saved)
	return saved, err
}

// DeleteProject removes a project
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.sendRequest(ctx, &Request{Type: RequestDeleteProject, Payload: IDPayload{ID: id}}, nil)
}

// UpsertDependency stores a dependency record
func (c *Client) UpsertDependency(ctx context.Context, dep entity.TaskDependencyRecord) error {
	return c.sendRequest(ctx, &Request{Type: RequestUpsertDependency, Payload: DependencyPayload{Dependency: dep}}, nil)
}

// DeleteDependency removes a dependency record
func (c *Client) DeleteDependency(ctx context.Context, taskID, dependentTaskID int64) error {
	payload := DependencyKeyPayload{TaskID: taskID, DependentTaskID: dependentTaskID}
	return c.sendRequest(ctx, &Request{Type: RequestDeleteDependency, Payload: payload}, nil)
}

// Subscribe opens a change stream for the user. The channel is closed when
// ctx is done or the daemon goes away.
func (c *Client) Subscribe(ctx context.Context, userID string) (<-chan entity.ChangeEvent, error) {
	conn, err := c.dial(ctx, false)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(conn)
	decoder := json.NewDecoder(conn)

	if err := encoder.Encode(&Request{Type: RequestSubscribe, Payload: UserPayload{UserID: userID}}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send subscribe: %w", err)
	}

	var resp rawResponse
	if err := decoder.Decode(&resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to decode subscribe response: %w", err)
	}
	if !resp.Success {
		conn.Close()
		return nil, responseError(&resp)
	}

	events := make(chan entity.ChangeEvent)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer conn.Close()

		for {
			var n Notification
			if err := decoder.Decode(&n); err != nil {
				return
			}
			if n.Type != NotificationChange || n.Event == nil {
				continue
			}
			select {
			case events <- *n.Event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// Ping checks if the daemon is running and responding
func (c *Client) Ping(ctx context.Context) error {
	return c.sendRequest(ctx, &Request{Type: RequestPing}, nil)
}
