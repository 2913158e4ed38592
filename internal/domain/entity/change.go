package entity

import (
	"encoding/json"
	"fmt"
)

// EventType is the kind of row change delivered by the change feed.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// IsValid returns true if the event type is a known value
func (e EventType) IsValid() bool {
	switch e {
	case EventInsert, EventUpdate, EventDelete:
		return true
	default:
		return false
	}
}

// EntityKind names the collection a change event targets.
type EntityKind string

const (
	KindTask       EntityKind = "task"
	KindProject    EntityKind = "project"
	KindDependency EntityKind = "dependency"
)

// Table returns the data service table backing the kind
func (k EntityKind) Table() string {
	switch k {
	case KindTask:
		return "tasks"
	case KindProject:
		return "projects"
	case KindDependency:
		return "task_dependencies"
	default:
		return ""
	}
}

// KindForTable maps a data service table name to its entity kind
func KindForTable(table string) (EntityKind, error) {
	switch table {
	case "tasks":
		return KindTask, nil
	case "projects":
		return KindProject, nil
	case "task_dependencies":
		return KindDependency, nil
	default:
		return "", fmt.Errorf("%w: table %q", ErrInvalidEntityKind, table)
	}
}

// ChangeEvent is a decoded row change. Exactly one pair of New/Old fields
// is populated, matching Kind.
type ChangeEvent struct {
	Type EventType
	Kind EntityKind

	NewTask *Task
	OldTask *Task

	NewProject *Project
	OldProject *Project

	NewDependency *TaskDependencyRecord
	OldDependency *TaskDependencyRecord
}

// TaskChange builds a task change event
func TaskChange(eventType EventType, newTask, oldTask *Task) ChangeEvent {
	return ChangeEvent{Type: eventType, Kind: KindTask, NewTask: newTask, OldTask: oldTask}
}

// ProjectChange builds a project change event
func ProjectChange(eventType EventType, newProject, oldProject *Project) ChangeEvent {
	return ChangeEvent{Type: eventType, Kind: KindProject, NewProject: newProject, OldProject: oldProject}
}

// DependencyChange builds a dependency change event
func DependencyChange(eventType EventType, newDep, oldDep *TaskDependencyRecord) ChangeEvent {
	return ChangeEvent{Type: eventType, Kind: KindDependency, NewDependency: newDep, OldDependency: oldDep}
}

// Validate checks that the payload required by the event type is present
func (e ChangeEvent) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, e.Type)
	}

	var hasNew, hasOld bool
	switch e.Kind {
	case KindTask:
		hasNew, hasOld = e.NewTask != nil, e.OldTask != nil
	case KindProject:
		hasNew, hasOld = e.NewProject != nil, e.OldProject != nil
	case KindDependency:
		hasNew, hasOld = e.NewDependency != nil, e.OldDependency != nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEntityKind, e.Kind)
	}

	if e.Type == EventDelete && !hasOld {
		return fmt.Errorf("%w: %s %s requires old record", ErrMissingPayload, e.Type, e.Kind)
	}
	if e.Type != EventDelete && !hasNew {
		return fmt.Errorf("%w: %s %s requires new record", ErrMissingPayload, e.Type, e.Kind)
	}
	return nil
}

// changeEventWire is the transport shape: {eventType, table, new, old}.
type changeEventWire struct {
	EventType EventType       `json:"eventType"`
	Table     string          `json:"table"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
}

// MarshalJSON encodes the event in the change feed wire format
func (e ChangeEvent) MarshalJSON() ([]byte, error) {
	wire := changeEventWire{EventType: e.Type, Table: e.Kind.Table()}

	var newValue, oldValue any
	switch e.Kind {
	case KindTask:
		newValue, oldValue = e.NewTask, e.OldTask
	case KindProject:
		newValue, oldValue = e.NewProject, e.OldProject
	case KindDependency:
		newValue, oldValue = e.NewDependency, e.OldDependency
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntityKind, e.Kind)
	}

	var err error
	if wire.New, err = marshalOptional(newValue); err != nil {
		return nil, err
	}
	if wire.Old, err = marshalOptional(oldValue); err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the change feed wire format
func (e *ChangeEvent) UnmarshalJSON(data []byte) error {
	var wire changeEventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	kind, err := KindForTable(wire.Table)
	if err != nil {
		return err
	}

	decoded := ChangeEvent{Type: wire.EventType, Kind: kind}
	switch kind {
	case KindTask:
		decoded.NewTask, err = unmarshalOptional[Task](wire.New)
		if err == nil {
			decoded.OldTask, err = unmarshalOptional[Task](wire.Old)
		}
	case KindProject:
		decoded.NewProject, err = unmarshalOptional[Project](wire.New)
		if err == nil {
			decoded.OldProject, err = unmarshalOptional[Project](wire.Old)
		}
	case KindDependency:
		decoded.NewDependency, err = unmarshalOptional[TaskDependencyRecord](wire.New)
		if err == nil {
			decoded.OldDependency, err = unmarshalOptional[TaskDependencyRecord](wire.Old)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", wire.Table, err)
	}

	*e = decoded
	return nil
}

func marshalOptional(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case *Task:
		if p == nil {
			return nil, nil
		}
	case *Project:
		if p == nil {
			return nil, nil
		}
	case *TaskDependencyRecord:
		if p == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalOptional[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DragEndEvent is the result of a drag gesture: task X dropped on column Y.
// A nil TargetColumnID means the task was dropped on "Unassigned".
type DragEndEvent struct {
	DraggedTaskID  int64  `json:"draggedTaskId"`
	SourceColumnID *int64 `json:"sourceColumnId"`
	TargetColumnID *int64 `json:"targetColumnId"`
}
