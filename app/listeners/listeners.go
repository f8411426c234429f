// Package listeners reacts to catalog write events: admin websocket clients
// get a change notification and the mutation counters are bumped.
package listeners

import (
	"strings"

	"github.com/ultranet/catalog/app/resources"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/event"
	"github.com/ultranet/catalog/pkg/metrics"
)

// Publisher is the part of the websocket hub the listeners need.
type Publisher interface {
	Publish(event string, data any) bool
}

// Register attaches the catalog listeners to d. hub may be nil, in which
// case only metrics are recorded.
func Register(d *event.Dispatcher, hub Publisher) {
	for _, name := range []string{services.EventProductCreated, services.EventProductUpdated, services.EventProductDeleted} {
		d.Listen(name, productChanged(name, hub))
	}
	d.Listen(services.EventProductBulkDeleted, bulkDeleted(hub))
	d.Listen(services.EventCategoryChanged, categoryChanged(hub))
}

func action(name string) string {
	return strings.TrimPrefix(name, "product.")
}

func productChanged(name string, hub Publisher) event.Handler {
	return func(payload any) {
		e, ok := payload.(services.ProductEvent)
		if !ok {
			return
		}
		metrics.RecordProductMutation(action(name), 1)
		publish(hub, name, resources.Product{}.ToArray(e.Product))
	}
}

func bulkDeleted(hub Publisher) event.Handler {
	return func(payload any) {
		e, ok := payload.(services.BulkDeleteEvent)
		if !ok {
			return
		}
		metrics.RecordProductMutation(action(services.EventProductBulkDeleted), int(e.Deleted))
		publish(hub, services.EventProductBulkDeleted, map[string]any{
			"ids":           e.IDs,
			"deleted_count": e.Deleted,
		})
	}
}

func categoryChanged(hub Publisher) event.Handler {
	return func(payload any) {
		e, ok := payload.(services.CategoryEvent)
		if !ok {
			return
		}
		data := resources.Category{}.ToArray(e.Category)
		data["deleted"] = e.Deleted
		publish(hub, services.EventCategoryChanged, data)
	}
}

func publish(hub Publisher, name string, data any) {
	if hub == nil {
		return
	}
	hub.Publish(name, data)
}
