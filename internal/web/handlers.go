package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tasktide/internal/domain/entity"
	"tasktide/internal/domain/repository"
	"tasktide/internal/domain/service"
	"tasktide/internal/web/res"
)

// Backend is the data service plus the ownership lookups the API needs
type Backend interface {
	repository.DataService
	TaskOwner(ctx context.Context, id int64) (string, error)
	ProjectOwner(ctx context.Context, id int64) (string, error)
}

func NewPingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res.Json(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}

func NewListTasksHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		tasks, err := data.FetchTasks(ctx, userID)
		if err != nil {
			WriteErr(w, err)
			return
		}
		service.SortTasks(tasks)
		res.Json(w, tasks, http.StatusOK)
	}
}

func NewBoardHandler(_ *slog.Logger, data Backend, columns []entity.Column, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		var projectID *int64
		if s := r.URL.Query().Get("projectId"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil || id <= 0 {
				res.Error(w, "invalid projectId", http.StatusBadRequest)
				return
			}
			projectID = &id
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		tasks, err := data.FetchTasks(ctx, userID)
		if err != nil {
			WriteErr(w, err)
			return
		}
		service.SortTasks(tasks)
		res.Json(w, service.Partition(tasks, columns, projectID), http.StatusOK)
	}
}

func NewUpsertTaskHandler(_ *slog.Logger, data Backend, columns []entity.Column, timeout time.Duration, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		var in TaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if in.ColumnID != nil {
			if _, ok := entity.FindColumn(columns, *in.ColumnID); !ok {
				WriteErr(w, entity.ErrColumnNotFound)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		task := entity.Task{
			ID:          in.ID,
			Title:       in.Title,
			Description: in.Description,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			ProjectID:   in.ProjectID,
			UserID:      userID,
		}

		status := http.StatusCreated
		if in.ID != 0 {
			existing, err := findTask(ctx, data, userID, in.ID)
			if err != nil {
				WriteErr(w, err)
				return
			}
			task.Created = existing.Created
			task.Completed = existing.Completed
			task.CompletedDate = existing.CompletedDate
			status = http.StatusOK
		}

		// Completion always follows the column
		task.MoveToColumn(in.ColumnID, now())

		saved, err := data.UpsertTask(ctx, task)
		if err != nil {
			WriteErr(w, err)
			return
		}
		res.Json(w, saved, status)
	}
}

func NewDeleteTaskHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		owner, err := data.TaskOwner(ctx, id)
		if err != nil {
			WriteErr(w, err)
			return
		}
		if owner != userID {
			WriteErr(w, entity.ErrTaskNotFound)
			return
		}
		if err := data.DeleteTask(ctx, id); err != nil {
			WriteErr(w, err)
			return
		}
		res.NoContent(w)
	}
}

func NewListProjectsHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		projects, err := data.FetchProjects(ctx, userID)
		if err != nil {
			WriteErr(w, err)
			return
		}
		res.Json(w, projects, http.StatusOK)
	}
}

func NewUpsertProjectHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())

		var in ProjectIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		saved, err := data.UpsertProject(ctx, entity.Project{ID: in.ID, Name: in.Name, Color: in.Color, UserID: userID})
		if err != nil {
			WriteErr(w, err)
			return
		}

		status := http.StatusCreated
		if in.ID != 0 {
			status = http.StatusOK
		}
		res.Json(w, saved, status)
	}
}

func NewDeleteProjectHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserFromContext(r.Context())
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		owner, err := data.ProjectOwner(ctx, id)
		if err != nil {
			WriteErr(w, err)
			return
		}
		if owner != userID {
			WriteErr(w, entity.ErrProjectNotFound)
			return
		}
		if err := data.DeleteProject(ctx, id); err != nil {
			WriteErr(w, err)
			return
		}
		res.NoContent(w)
	}
}

func NewUpsertDependencyHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dep, ctx, cancel, ok := ownedDependency(w, r, data, timeout)
		if !ok {
			return
		}
		defer cancel()

		if err := data.UpsertDependency(ctx, dep); err != nil {
			WriteErr(w, err)
			return
		}
		res.Json(w, dep, http.StatusCreated)
	}
}

func NewDeleteDependencyHandler(_ *slog.Logger, data Backend, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dep, ctx, cancel, ok := ownedDependency(w, r, data, timeout)
		if !ok {
			return
		}
		defer cancel()

		if err := data.DeleteDependency(ctx, dep.TaskID, dep.DependentTaskID); err != nil {
			WriteErr(w, err)
			return
		}
		res.NoContent(w)
	}
}

// ownedDependency decodes the body and checks the blocked task belongs to the caller
func ownedDependency(w http.ResponseWriter, r *http.Request, data Backend, timeout time.Duration) (entity.TaskDependencyRecord, context.Context, context.CancelFunc, bool) {
	userID, _ := UserFromContext(r.Context())

	var in DependencyIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return entity.TaskDependencyRecord{}, nil, nil, false
	}
	dep := in.Record()
	if err := dep.Validate(); err != nil {
		WriteErr(w, err)
		return entity.TaskDependencyRecord{}, nil, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	owner, err := data.TaskOwner(ctx, dep.TaskID)
	if err == nil && owner != userID {
		err = entity.ErrTaskNotFound
	}
	if err != nil {
		cancel()
		WriteErr(w, err)
		return entity.TaskDependencyRecord{}, nil, nil, false
	}
	return dep, ctx, cancel, true
}

func findTask(ctx context.Context, data Backend, userID string, id int64) (entity.Task, error) {
	tasks, err := data.FetchTasks(ctx, userID)
	if err != nil {
		return entity.Task{}, err
	}
	for _, task := range tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return entity.Task{}, entity.ErrTaskNotFound
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		res.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
