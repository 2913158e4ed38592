package realtime

import (
	"context"
	"testing"
	"time"

	"tasktide/internal/domain/entity"
)

func taskInsert(id int64) entity.ChangeEvent {
	return entity.TaskChange(entity.EventInsert, &entity.Task{ID: id, Title: "t"}, nil)
}

func receive(t *testing.T, ch <-chan entity.ChangeEvent) (entity.ChangeEvent, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
		return entity.ChangeEvent{}, false
	}
}

func TestBrokerFiltersByUser(t *testing.T) {
	b := NewBroker(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice, err := b.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	bob, err := b.Subscribe(ctx, "bob")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	b.Publish("alice", taskInsert(1))

	ev, ok := receive(t, alice)
	if !ok || ev.NewTask.ID != 1 {
		t.Errorf("Expected task 1 for alice, got %+v (open=%v)", ev, ok)
	}

	select {
	case ev := <-bob:
		t.Errorf("Expected no event for bob, got %+v", ev)
	default:
	}
}

func TestBrokerClosesOnContextDone(t *testing.T) {
	b := NewBroker(4, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	cancel()

	if _, ok := receive(t, ch); ok {
		t.Error("Expected channel to be closed after cancel")
	}
	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("Expected 0 subscribers, got %d", n)
	}
}

func TestBrokerDropsSlowSubscriber(t *testing.T) {
	b := NewBroker(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	b.Publish("alice", taskInsert(1))
	b.Publish("alice", taskInsert(2))

	ev, ok := receive(t, ch)
	if !ok || ev.NewTask.ID != 1 {
		t.Fatalf("Expected buffered task 1, got %+v", ev)
	}
	if _, ok := receive(t, ch); ok {
		t.Error("Expected slow subscriber to be disconnected")
	}
}

func TestBrokerSubscribeCancelledContext(t *testing.T) {
	b := NewBroker(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Subscribe(ctx, "alice"); err == nil {
		t.Error("Expected error subscribing with cancelled context")
	}
}
