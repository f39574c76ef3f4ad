package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(evt any)

// Bus is a topic-keyed publish/subscribe hub. Dispatch is synchronous: the
// simulation is single-threaded and handlers must observe world state mid
// update without racing it, so Publish runs every handler inline before
// returning.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(topic string, handler HandlerFunc) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

func (b *Bus) Publish(topic string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.RUnlock()

	for _, handler := range handlers {
		func(h HandlerFunc) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Event handler panicked", "topic", topic, "panic", r)
				}
			}()
			h(evt)
		}(handler)
	}
}
