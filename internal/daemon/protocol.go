package daemon

import (
	"encoding/json"
	"errors"

	"tasktide/internal/domain/entity"
)

// Request types
const (
	RequestFetchTasks       = "fetch_tasks"
	RequestFetchProjects    = "fetch_projects"
	RequestUpsertTask       = "upsert_task"
	RequestDeleteTask       = "delete_task"
	RequestUpsertProject    = "upsert_project"
	RequestDeleteProject    = "delete_project"
	RequestUpsertDependency = "upsert_dependency"
	RequestDeleteDependency = "delete_dependency"
	RequestSubscribe        = "subscribe"
	RequestPing             = "ping"
)

// NotificationChange carries one change event on a subscribe stream
const NotificationChange = "change"

// Request represents a client request to the daemon
type Request struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Response represents a daemon response to the client
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// rawResponse is the client side view of Response
type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Notification is pushed to subscribers after the subscribe response
type Notification struct {
	Type  string              `json:"type"`
	Event *entity.ChangeEvent `json:"event,omitempty"`
}

// UserPayload selects the user a fetch or subscribe applies to
type UserPayload struct {
	UserID string `json:"user_id"`
}

// IDPayload identifies a task or project
type IDPayload struct {
	ID int64 `json:"id"`
}

// TaskPayload carries a task to upsert
type TaskPayload struct {
	Task entity.Task `json:"task"`
}

// ProjectPayload carries a project to upsert
type ProjectPayload struct {
	Project entity.Project `json:"project"`
}

// DependencyPayload carries a dependency record to upsert
type DependencyPayload struct {
	Dependency entity.TaskDependencyRecord `json:"dependency"`
}

// DependencyKeyPayload identifies a dependency record
type DependencyKeyPayload struct {
	TaskID          int64 `json:"task_id"`
	DependentTaskID int64 `json:"dependent_task_id"`
}

// errorCodes lets the client restore sentinel errors across the socket
var errorCodes = map[string]error{
	"task_not_found":        entity.ErrTaskNotFound,
	"project_not_found":     entity.ErrProjectNotFound,
	"dependency_not_found":  entity.ErrDependencyNotFound,
	"task_blocked":          entity.ErrTaskBlocked,
	"empty_task_title":      entity.ErrEmptyTaskTitle,
	"invalid_task_id":       entity.ErrInvalidTaskID,
	"invalid_date_range":    entity.ErrInvalidDateRange,
	"empty_project_name":    entity.ErrEmptyProjectName,
	"invalid_color":         entity.ErrInvalidColor,
	"invalid_dependency":    entity.ErrInvalidDependencyType,
	"self_dependency":       entity.ErrSelfDependency,
	"invalid_event_type":    entity.ErrInvalidEventType,
	"invalid_entity_kind":   entity.ErrInvalidEntityKind,
	"missing_event_payload": entity.ErrMissingPayload,
}

// errorResponse builds a failed response, tagging known sentinels
func errorResponse(err error) *Response {
	resp := &Response{Success: false, Error: err.Error()}
	for code, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			resp.Code = code
			break
		}
	}
	return resp
}

// remoteError is a daemon failure restored on the client
type remoteError struct {
	message  string
	sentinel error
}

func (e *remoteError) Error() string {
	return "daemon error: " + e.message
}

func (e *remoteError) Unwrap() error {
	return e.sentinel
}

func responseError(resp *rawResponse) error {
	return &remoteError{message: resp.Error, sentinel: errorCodes[resp.Code]}
}
