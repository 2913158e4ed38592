package board

import (
	"context"
	"errors"
	"sync"

	"tasktide/internal/domain/entity"
)

var errUnavailable = errors.New("data service unavailable")

// fakeData is an in-memory data service. Setting fail makes every write fail.
type fakeData struct {
	mu       sync.Mutex
	tasks    map[int64]entity.Task
	projects map[int64]entity.Project
	deps     []entity.TaskDependencyRecord
	nextID   int64
	fail     bool
	upserted []entity.Task
	deleted  []int64
}

func newFakeData() *fakeData {
	return &fakeData{
		tasks:    make(map[int64]entity.Task),
		projects: make(map[int64]entity.Project),
		nextID:   100,
	}
}

func (f *fakeData) FetchTasks(_ context.Context, userID string) ([]entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (f *fakeData) UpsertTask(_ context.Context, task entity.Task) (entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return entity.Task{}, errUnavailable
	}
	if task.ID == 0 {
		f.nextID++
		task.ID = f.nextID
	}
	f.tasks[task.ID] = task.Clone()
	f.upserted = append(f.upserted, task.Clone())
	return task, nil
}

func (f *fakeData) DeleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errUnavailable
	}
	if _, ok := f.tasks[id]; !ok {
		return entity.ErrTaskNotFound
	}
	delete(f.tasks, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeData) FetchProjects(_ context.Context, userID string) ([]entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeData) UpsertProject(_ context.Context, project entity.Project) (entity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return entity.Project{}, errUnavailable
	}
	if project.ID == 0 {
		f.nextID++
		project.ID = f.nextID
	}
	f.projects[project.ID] = project
	return project, nil
}

func (f *fakeData) DeleteProject(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errUnavailable
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeData) UpsertDependency(_ context.Context, dep entity.TaskDependencyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errUnavailable
	}
	f.deps = append(f.deps, dep)
	return nil
}

func (f *fakeData) DeleteDependency(_ context.Context, taskID, dependentTaskID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errUnavailable
	}
	for i, d := range f.deps {
		if d.TaskID == taskID && d.DependentTaskID == dependentTaskID {
			f.deps = append(f.deps[:i], f.deps[i+1:]...)
			return nil
		}
	}
	return entity.ErrDependencyNotFound
}

func (f *fakeData) Subscribe(ctx context.Context, _ string) (<-chan entity.ChangeEvent, error) {
	ch := make(chan entity.ChangeEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeData) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}
