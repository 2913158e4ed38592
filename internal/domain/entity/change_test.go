package entity

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestChangeEventDecodesWireFormat(t *testing.T) {
	raw := `{"eventType":"UPDATE","table":"tasks","new":{"id":3,"title":"ship","columnId":2,"completed":false,"completedDate":null,"created":"2024-03-01T10:00:00Z","userId":"u1","projectId":1},"old":{"id":3}}`

	var event ChangeEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}

	if event.Type != EventUpdate || event.Kind != KindTask {
		t.Fatalf("Expected UPDATE task, got %s %s", event.Type, event.Kind)
	}
	if event.NewTask == nil || event.NewTask.Title != "ship" {
		t.Fatalf("Expected new task payload, got %+v", event.NewTask)
	}
	if event.NewTask.ColumnID == nil || *event.NewTask.ColumnID != 2 {
		t.Errorf("Expected column 2, got %v", event.NewTask.ColumnID)
	}
	if event.OldTask == nil || event.OldTask.ID != 3 {
		t.Errorf("Expected old task id 3, got %+v", event.OldTask)
	}
	if err := event.Validate(); err != nil {
		t.Errorf("Expected valid event, got %v", err)
	}
}

func TestChangeEventDependencyRoundTrip(t *testing.T) {
	event := DependencyChange(EventDelete, nil, &TaskDependencyRecord{TaskID: 1, DependentTaskID: 2, DependencyType: DependencyBlockedBy})

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Failed to encode event: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Failed to decode wire map: %v", err)
	}
	if wire["table"] != "task_dependencies" {
		t.Errorf("Expected table task_dependencies, got %v", wire["table"])
	}
	if _, ok := wire["new"]; ok {
		t.Errorf("Expected new to be omitted for a delete")
	}

	var decoded ChangeEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if decoded.OldDependency == nil || decoded.OldDependency.DependentTaskID != 2 {
		t.Errorf("Expected old dependency with blocker 2, got %+v", decoded.OldDependency)
	}
}

func TestChangeEventUnknownTable(t *testing.T) {
	var event ChangeEvent
	err := json.Unmarshal([]byte(`{"eventType":"INSERT","table":"comments","new":{}}`), &event)
	if !errors.Is(err, ErrInvalidEntityKind) {
		t.Errorf("Expected ErrInvalidEntityKind, got %v", err)
	}
}

func TestChangeEventValidateMissingPayload(t *testing.T) {
	tests := []ChangeEvent{
		TaskChange(EventInsert, nil, nil),
		ProjectChange(EventDelete, &Project{ID: 1}, nil),
		{Type: "UPSERT", Kind: KindTask, NewTask: &Task{ID: 1}},
	}

	for _, event := range tests {
		if err := event.Validate(); err == nil {
			t.Errorf("Expected %s %s to be invalid", event.Type, event.Kind)
		}
	}
}
