package dialog

import (
	"testing"
	"time"

	"tasktide/internal/domain/entity"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestCoordinator() (*Coordinator, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewCoordinator(WithClock(clock.Now)), clock
}

func TestCloseWithinDebounceIsSuppressed(t *testing.T) {
	c, clock := newTestCoordinator()

	c.Open(EditTask, entity.Int64Ptr(7))
	clock.Advance(40 * time.Millisecond)

	if c.Close(EditTask) {
		t.Errorf("Expected close within the debounce window to be suppressed")
	}
	state := c.State(EditTask)
	if !state.Open {
		t.Errorf("Expected dialog to stay open")
	}
	if state.SelectedID == nil || *state.SelectedID != 7 {
		t.Errorf("Expected selection 7 to survive, got %v", state.SelectedID)
	}

	clock.Advance(100 * time.Millisecond)
	if !c.Close(EditTask) {
		t.Errorf("Expected close after the debounce window to succeed")
	}
	state = c.State(EditTask)
	if state.Open || state.SelectedID != nil {
		t.Errorf("Expected closed dialog with no selection, got %+v", state)
	}
}

func TestDebounceBoundary(t *testing.T) {
	c, clock := newTestCoordinator()

	c.Open(AddTask, nil)
	clock.Advance(DefaultDebounce)
	if !c.Close(AddTask) {
		t.Errorf("Expected close exactly at the window edge to succeed")
	}
}

func TestDebounceSharedAcrossDialogs(t *testing.T) {
	c, clock := newTestCoordinator()

	c.Open(Project, nil)
	clock.Advance(time.Second)
	c.Open(DeleteTask, entity.Int64Ptr(3))
	clock.Advance(10 * time.Millisecond)

	if c.Close(Project) {
		t.Errorf("Expected close right after another dialog opened to be suppressed")
	}
}

func TestCloseClosedDialog(t *testing.T) {
	c, _ := newTestCoordinator()
	if !c.Close(DeleteProject) {
		t.Errorf("Expected closing a closed dialog to report closed")
	}
	if _, ok := c.Active(); ok {
		t.Errorf("Expected no active dialog")
	}
}

func TestSetOpenAndActive(t *testing.T) {
	c, clock := newTestCoordinator()

	c.SetOpen(DeleteProject, true, entity.Int64Ptr(2))
	kind, ok := c.Active()
	if !ok || kind != DeleteProject {
		t.Fatalf("Expected delete_project to be active, got %q", kind)
	}
	if got := c.Selected(DeleteProject); got == nil || *got != 2 {
		t.Errorf("Expected selected project 2, got %v", got)
	}

	clock.Advance(time.Second)
	if !c.SetOpen(DeleteProject, false, nil) {
		t.Errorf("Expected close to succeed")
	}
	if c.IsOpen(DeleteProject) {
		t.Errorf("Expected dialog to be closed")
	}
}

func TestWithDebounce(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewCoordinator(WithClock(clock.Now), WithDebounce(0))

	c.Open(AddTask, nil)
	if !c.Close(AddTask) {
		t.Errorf("Expected zero debounce to allow an immediate close")
	}
}
