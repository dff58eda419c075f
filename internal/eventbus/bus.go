// Package eventbus implements the in-process event publisher: synchronous,
// registration-ordered fan-out with subscriber-error isolation and no
// durable buffer.
package eventbus

import (
	"log/slog"
	"sync"

	"mpi-core/internal/domain/event"
)

// Bus is the event publisher. The subscriber list lives behind a mutex;
// delivery itself runs outside the lock.
type Bus struct {
	mu          sync.Mutex
	subscribers []event.Subscriber
	logger      *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a subscriber; delivery order matches registration order.
func (b *Bus) Subscribe(s event.Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// Publish delivers e to every subscriber synchronously, in registration
// order. A subscriber error is logged and does not abort delivery to later
// subscribers; Publish itself never fails.
func (b *Bus) Publish(e event.Event) error {
	b.mu.Lock()
	subs := make([]event.Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, s := range subs {
		if err := s.Handle(e); err != nil {
			b.logger.Error("event subscriber failed", "kind", e.Kind, "error", err)
		}
	}
	return nil
}
