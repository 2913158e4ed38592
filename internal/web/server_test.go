package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/service"
	"tasktide/internal/infrastructure/auth"
	"tasktide/internal/infrastructure/persistence/sqlstore"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	server *httptest.Server
	store  *sqlstore.Store
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token service: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRouter(log, store, tokens, RouterConfig{
		AllowedOrigins: []string{"*"},
		Now:            func() time.Time { return fixedNow },
	})
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testAPI{server: server, store: store, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, user, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if user != "" {
		token, err := a.tokens.Issue(user)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d: %s", want, resp.StatusCode, body)
	}
}

func TestPingIsPublic(t *testing.T) {
	api := newTestAPI(t)
	expectStatus(t, api.do(t, "", http.MethodGet, "/api/ping", nil), http.StatusOK)
}

func TestRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)
	expectStatus(t, api.do(t, "", http.MethodGet, "/api/tasks", nil), http.StatusUnauthorized)

	req, _ := http.NewRequest(http.MethodGet, api.server.URL+"/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer forged")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "Plan sprint", ColumnID: entity.Int64Ptr(1)})
	expectStatus(t, resp, http.StatusCreated)
	created := decode[entity.Task](t, resp)
	if created.ID == 0 || created.UserID != "alice" {
		t.Fatalf("Unexpected created task %+v", created)
	}

	// Moving into the terminal column completes the task
	resp = api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{ID: created.ID, Title: "Plan sprint", ColumnID: entity.Int64Ptr(entity.CompletedColumnID)})
	expectStatus(t, resp, http.StatusOK)
	updated := decode[entity.Task](t, resp)
	if !updated.Completed || updated.CompletedDate == nil || !updated.CompletedDate.Equal(fixedNow) {
		t.Errorf("Expected completed task stamped %v, got %+v", fixedNow, updated)
	}

	resp = api.do(t, "alice", http.MethodGet, "/api/tasks", nil)
	expectStatus(t, resp, http.StatusOK)
	if tasks := decode[[]entity.Task](t, resp); len(tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(tasks))
	}

	resp = api.do(t, "bob", http.MethodGet, "/api/tasks", nil)
	expectStatus(t, resp, http.StatusOK)
	if tasks := decode[[]entity.Task](t, resp); len(tasks) != 0 {
		t.Errorf("Expected bob to see no tasks, got %d", len(tasks))
	}

	expectStatus(t, api.do(t, "bob", http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil), http.StatusNotFound)
	expectStatus(t, api.do(t, "alice", http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil), http.StatusNoContent)
	expectStatus(t, api.do(t, "alice", http.MethodDelete, fmt.Sprintf("/api/tasks/%d", created.ID), nil), http.StatusNotFound)
}

func TestUpsertTaskValidation(t *testing.T) {
	api := newTestAPI(t)

	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: ""}), http.StatusBadRequest)
	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "x", ColumnID: entity.Int64Ptr(9)}), http.StatusBadRequest)
	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{ID: 77, Title: "x"}), http.StatusNotFound)
}

func TestBoardPartition(t *testing.T) {
	api := newTestAPI(t)

	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "todo", ColumnID: entity.Int64Ptr(1)}), http.StatusCreated)
	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "loose"}), http.StatusCreated)

	resp := api.do(t, "alice", http.MethodGet, "/api/board", nil)
	expectStatus(t, resp, http.StatusOK)
	board := decode[service.BoardView](t, resp)

	if len(board.Unassigned) != 1 || board.Unassigned[0].Title != "loose" {
		t.Errorf("Expected one unassigned task, got %+v", board.Unassigned)
	}
	if len(board.Columns) != 4 || len(board.Columns[0].Tasks) != 1 {
		t.Errorf("Expected 4 columns with one To Do task, got %+v", board.Columns)
	}
}

func TestProjectsAndDependencies(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "alice", http.MethodPost, "/api/projects", ProjectIn{Name: "Web", Color: "#abcdef"})
	expectStatus(t, resp, http.StatusCreated)
	project := decode[entity.Project](t, resp)

	resp = api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "a", ProjectID: &project.ID})
	expectStatus(t, resp, http.StatusCreated)
	a := decode[entity.Task](t, resp)
	resp = api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "b", ProjectID: &project.ID})
	expectStatus(t, resp, http.StatusCreated)
	b := decode[entity.Task](t, resp)

	dep := DependencyIn{TaskID: a.ID, DependentTaskID: b.ID}
	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/dependencies", dep), http.StatusCreated)
	expectStatus(t, api.do(t, "bob", http.MethodPost, "/api/dependencies", dep), http.StatusNotFound)
	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/dependencies", DependencyIn{TaskID: a.ID, DependentTaskID: a.ID}), http.StatusBadRequest)
	expectStatus(t, api.do(t, "alice", http.MethodDelete, "/api/dependencies", dep), http.StatusNoContent)
	expectStatus(t, api.do(t, "alice", http.MethodDelete, "/api/dependencies", dep), http.StatusNotFound)

	resp = api.do(t, "alice", http.MethodGet, "/api/projects", nil)
	expectStatus(t, resp, http.StatusOK)
	if projects := decode[[]entity.Project](t, resp); len(projects) != 1 {
		t.Errorf("Expected 1 project, got %d", len(projects))
	}

	expectStatus(t, api.do(t, "bob", http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil), http.StatusNotFound)
	expectStatus(t, api.do(t, "alice", http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil), http.StatusNoContent)
}

func TestChangeFeedWebSocket(t *testing.T) {
	api := newTestAPI(t)

	token, err := api.tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/api/ws?access_token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for api.store.Broker().SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Websocket never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	expectStatus(t, api.do(t, "alice", http.MethodPost, "/api/tasks", TaskIn{Title: "live"}), http.StatusCreated)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read change event: %v", err)
	}

	var event entity.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to decode change event: %v", err)
	}
	if event.Type != entity.EventInsert || event.Kind != entity.KindTask || event.NewTask.Title != "live" {
		t.Errorf("Unexpected change event %+v", event)
	}
}
