// Package event provides a synchronous in-process event dispatcher.
//
// Services fire domain events after a successful write. Listeners such as
// the websocket broadcast and the mutation counters react without the service
// knowing about them:
//
//	d := event.New()
//	d.Listen("product.created", func(p any) { ... })
//	d.Fire("product.created", product)
package event

import (
	"sync"

	"github.com/ultranet/catalog/pkg/logger"
)

// Handler is a function that receives an event payload.
type Handler func(payload any)

// Dispatcher routes events to their listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New returns an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (d *Dispatcher) Listen(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
}

// Fire calls every listener of event in registration order. A panicking
// listener is logged and does not stop the others.
func (d *Dispatcher) Fire(event string, payload any) {
	for _, h := range d.listeners(event) {
		call(event, h, payload)
	}
}

func (d *Dispatcher) listeners(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	copy(hs, d.handlers[event])
	return hs
}

func call(event string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("event: listener panicked", "event", event, "panic", rec)
		}
	}()
	h(payload)
}
