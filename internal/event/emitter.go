// Package event provides generic event emission utilities.
package event

import (
	"log/slog"
	"sync"
)

// Emitter provides thread-safe event emission with handler registration.
// It handles the common pattern of registering observer callbacks and
// invoking them safely: a panicking handler is logged and skipped, so a
// broken observer can never abort the transition that emitted the event.
type Emitter[E any] struct {
	// +checklocks:mu
	handlers []func(E)
	mu       sync.RWMutex
}

// OnEvent registers an event handler.
// Handlers are called synchronously, in registration order, when events are
// emitted.
func (e *Emitter[E]) OnEvent(handler func(E)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// Emit sends an event to all registered handlers.
// Handlers are called with a copy of the handler slice to allow safe
// iteration even if new handlers are registered during emission.
// Must not be called with lock held.
func (e *Emitter[E]) Emit(event E) {
	e.mu.RLock()
	handlers := make([]func(E), len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	for _, h := range handlers {
		safeCall(h, event)
	}
}

// safeCall invokes one handler, containing any panic it raises.
func safeCall[E any](h func(E), event E) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "panic", r)
		}
	}()
	h(event)
}
