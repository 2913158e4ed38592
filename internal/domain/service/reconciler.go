package service

import (
	"slices"

	"tasktide/internal/domain/entity"
)

// BoardState is the in-memory mirror of the data service for one user.
type BoardState struct {
	Tasks           []entity.Task
	Projects        []entity.Project
	ActiveProjectID *int64
}

// ApplyResult describes what an applied change event did to the state.
type ApplyResult struct {
	// NoOp is set when the event referenced an unknown entity and nothing changed.
	NoOp bool

	// ActiveProjectChanged is set when the active project selection moved.
	ActiveProjectChanged bool
}

// Clone returns a deep copy of the state
func (s BoardState) Clone() BoardState {
	out := BoardState{ActiveProjectID: entity.CloneID(s.ActiveProjectID)}
	if s.Tasks != nil {
		out.Tasks = make([]entity.Task, len(s.Tasks))
		for i, t := range s.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	if s.Projects != nil {
		out.Projects = slices.Clone(s.Projects)
	}
	return out
}

// FindTask returns the task with the given id
func (s BoardState) FindTask(id int64) (entity.Task, bool) {
	if i := indexOfTask(s.Tasks, id); i >= 0 {
		return s.Tasks[i], true
	}
	return entity.Task{}, false
}

// FindProject returns the project with the given id
func (s BoardState) FindProject(id int64) (entity.Project, bool) {
	if i := indexOfProject(s.Projects, id); i >= 0 {
		return s.Projects[i], true
	}
	return entity.Project{}, false
}

// Apply folds a change event into the state and returns the new state.
// The input state is never modified.
func Apply(state BoardState, event entity.ChangeEvent) (BoardState, ApplyResult) {
	next := state.Clone()
	var result ApplyResult

	switch event.Kind {
	case entity.KindTask:
		result = applyTask(&next, event)
	case entity.KindDependency:
		result = applyDependency(&next, event)
	case entity.KindProject:
		result = applyProject(&next, event)
	default:
		return next, ApplyResult{NoOp: true}
	}

	if result.NoOp {
		// Nothing changed; hand back the untouched copy.
		return next, result
	}

	SortTasks(next.Tasks)
	return next, result
}

// ReplaceTasks installs a fetched task list, sorted by end date.
func ReplaceTasks(state BoardState, tasks []entity.Task) BoardState {
	next := state.Clone()
	next.Tasks = make([]entity.Task, len(tasks))
	for i, t := range tasks {
		next.Tasks[i] = t.Clone()
	}
	SortTasks(next.Tasks)
	return next
}

// ReplaceProjects installs a fetched project list, sorted by id. The active
// project is kept when it still exists, otherwise the first project is selected.
func ReplaceProjects(state BoardState, projects []entity.Project) BoardState {
	next := state.Clone()
	next.Projects = slices.Clone(projects)
	SortProjects(next.Projects)

	if next.ActiveProjectID != nil && indexOfProject(next.Projects, *next.ActiveProjectID) >= 0 {
		return next
	}
	next.ActiveProjectID = firstProjectID(next.Projects)
	return next
}

// UpsertLocalTask replaces (or appends) a task in the local state. It is
// used by the optimistic mutation path, never for realtime events.
func UpsertLocalTask(state BoardState, task entity.Task) BoardState {
	next := state.Clone()
	if i := indexOfTask(next.Tasks, task.ID); i >= 0 {
		next.Tasks[i] = task.Clone()
	} else {
		next.Tasks = append(next.Tasks, task.Clone())
	}
	SortTasks(next.Tasks)
	return next
}

func applyTask(state *BoardState, event entity.ChangeEvent) ApplyResult {
	switch event.Type {
	case entity.EventInsert, entity.EventUpdate:
		incoming := event.NewTask
		if incoming == nil {
			return ApplyResult{NoOp: true}
		}

		i := indexOfTask(state.Tasks, incoming.ID)
		if i < 0 {
			if event.Type == entity.EventUpdate {
				return ApplyResult{NoOp: true}
			}
			state.Tasks = append(state.Tasks, incoming.Clone())
			return ApplyResult{}
		}

		// Task rows carry no dependencies; keep the ones already merged.
		replacement := incoming.Clone()
		if replacement.Dependencies == nil {
			replacement.Dependencies = state.Tasks[i].Dependencies
		}
		state.Tasks[i] = replacement
		return ApplyResult{}

	case entity.EventDelete:
		if event.OldTask == nil {
			return ApplyResult{NoOp: true}
		}
		id := event.OldTask.ID
		i := indexOfTask(state.Tasks, id)
		if i < 0 {
			return ApplyResult{NoOp: true}
		}
		state.Tasks = slices.Delete(state.Tasks, i, i+1)
		pruneDependenciesOn(state.Tasks, id)
		return ApplyResult{}
	}

	return ApplyResult{NoOp: true}
}

func applyDependency(state *BoardState, event entity.ChangeEvent) ApplyResult {
	switch event.Type {
	case entity.EventInsert, entity.EventUpdate:
		dep := event.NewDependency
		if dep == nil {
			return ApplyResult{NoOp: true}
		}
		i := indexOfTask(state.Tasks, dep.TaskID)
		if i < 0 {
			return ApplyResult{NoOp: true}
		}
		owner := &state.Tasks[i]
		j := slices.IndexFunc(owner.Dependencies, func(d entity.TaskDependencyRecord) bool {
			return d.DependentTaskID == dep.DependentTaskID
		})
		if j >= 0 {
			owner.Dependencies[j] = *dep
		} else {
			owner.Dependencies = append(owner.Dependencies, *dep)
		}
		return ApplyResult{}

	case entity.EventDelete:
		dep := event.OldDependency
		if dep == nil {
			return ApplyResult{NoOp: true}
		}
		i := indexOfTask(state.Tasks, dep.TaskID)
		if i < 0 {
			return ApplyResult{NoOp: true}
		}
		owner := &state.Tasks[i]
		before := len(owner.Dependencies)
		owner.Dependencies = slices.DeleteFunc(owner.Dependencies, func(d entity.TaskDependencyRecord) bool {
			return d.DependentTaskID == dep.DependentTaskID
		})
		if len(owner.Dependencies) == before {
			return ApplyResult{NoOp: true}
		}
		return ApplyResult{}
	}

	return ApplyResult{NoOp: true}
}

func applyProject(state *BoardState, event entity.ChangeEvent) ApplyResult {
	var result ApplyResult

	switch event.Type {
	case entity.EventInsert, entity.EventUpdate:
		incoming := event.NewProject
		if incoming == nil {
			return ApplyResult{NoOp: true}
		}

		i := indexOfProject(state.Projects, incoming.ID)
		switch {
		case i >= 0:
			state.Projects[i] = *incoming
		case event.Type == entity.EventUpdate:
			return ApplyResult{NoOp: true}
		default:
			state.Projects = append(state.Projects, *incoming)
			// A freshly created project becomes the one being viewed.
			result.ActiveProjectChanged = !entity.SameID(state.ActiveProjectID, &incoming.ID)
			state.ActiveProjectID = entity.Int64Ptr(incoming.ID)
		}

	case entity.EventDelete:
		if event.OldProject == nil {
			return ApplyResult{NoOp: true}
		}
		i := indexOfProject(state.Projects, event.OldProject.ID)
		if i < 0 {
			return ApplyResult{NoOp: true}
		}
		state.Projects = slices.Delete(state.Projects, i, i+1)
		SortProjects(state.Projects)

		if entity.SameID(state.ActiveProjectID, &event.OldProject.ID) {
			state.ActiveProjectID = firstProjectID(state.Projects)
			result.ActiveProjectChanged = true
		}
		return result

	default:
		return ApplyResult{NoOp: true}
	}

	SortProjects(state.Projects)
	return result
}

// pruneDependenciesOn removes every record naming id as its blocker.
func pruneDependenciesOn(tasks []entity.Task, id int64) {
	for i := range tasks {
		if len(tasks[i].Dependencies) == 0 {
			continue
		}
		tasks[i].Dependencies = slices.DeleteFunc(tasks[i].Dependencies, func(d entity.TaskDependencyRecord) bool {
			return d.DependentTaskID == id
		})
	}
}

func firstProjectID(projects []entity.Project) *int64 {
	if len(projects) == 0 {
		return nil
	}
	return entity.Int64Ptr(projects[0].ID)
}

func indexOfTask(tasks []entity.Task, id int64) int {
	return slices.IndexFunc(tasks, func(t entity.Task) bool { return t.ID == id })
}

func indexOfProject(projects []entity.Project, id int64) int {
	return slices.IndexFunc(projects, func(p entity.Project) bool { return p.ID == id })
}
