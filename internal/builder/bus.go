package builder

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/paninibuild/panini/internal/eventstore"
)

// Handler processes an Event.
type Handler func(Event)

// Bus is a simple synchronous pub/sub bus for lifecycle events. When an
// event store is configured, every published event is persisted before
// delivery, keyed by its build ID.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	store       eventstore.Store
}

// NewBus creates an in-memory bus.
func NewBus() *Bus { return &Bus{subscribers: map[string][]Handler{}} }

// NewBusWithStore creates a bus that persists events to the store.
func NewBusWithStore(store eventstore.Store) *Bus {
	return &Bus{subscribers: map[string][]Handler{}, store: store}
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// SubscribeAll registers a handler for every event name in the lifecycle.
func (b *Bus) SubscribeAll(h Handler) {
	for _, name := range []string{
		EventSetupStart, EventSetupDone, EventRefreshing,
		EventParsing, EventBuilding, EventBuilt, EventError,
	} {
		b.Subscribe(name, h)
	}
}

// Publish delivers an event to all handlers synchronously. Store failures
// are logged, never propagated: persistence must not break a build.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b.store != nil {
		payload, err := json.Marshal(e)
		if err == nil {
			err = b.store.Append(ctx, e.BuildID, e.Name, payload)
		}
		if err != nil {
			slog.Warn("event persistence failed",
				slog.String("event", e.Name), slog.Any("error", err))
		}
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Name]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
