package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"tasktide/internal/domain/entity"
)

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 64

// Broker fans change events out to per-user subscribers. A subscriber that
// cannot keep up is disconnected and must resubscribe and refetch.
type Broker struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*subscriber
	buffer      int
	log         *slog.Logger
}

type subscriber struct {
	userID string
	ch     chan entity.ChangeEvent
}

// NewBroker creates a broker with the given channel buffer
func NewBroker(buffer int, log *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		subscribers: make(map[uuid.UUID]*subscriber),
		buffer:      buffer,
		log:         log,
	}
}

// Subscribe registers a subscriber for userID. The channel is closed when
// ctx is done or the subscriber falls behind.
func (b *Broker) Subscribe(ctx context.Context, userID string) (<-chan entity.ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()
	sub := &subscriber{userID: userID, ch: make(chan entity.ChangeEvent, b.buffer)}

	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()

	b.log.Debug("subscriber registered", slog.String("id", id.String()), slog.String("user", userID))

	go func() {
		<-ctx.Done()
		b.remove(id)
	}()

	return sub.ch, nil
}

// Publish delivers the event to every subscriber of userID without blocking
func (b *Broker) Publish(userID string, event entity.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscribers {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.log.Warn("dropping slow subscriber", slog.String("id", id.String()), slog.String("user", userID))
			close(sub.ch)
			delete(b.subscribers, id)
		}
	}
}

// SubscriberCount returns the number of live subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close disconnects every subscriber
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

func (b *Broker) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	close(sub.ch)
	delete(b.subscribers, id)
	b.log.Debug("subscriber removed", slog.String("id", id.String()))
}
