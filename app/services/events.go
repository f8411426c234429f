package services

import "github.com/ultranet/catalog/app/models"

// Domain events fired after a successful write.
const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeleted     = "product.deleted"
	EventProductBulkDeleted = "product.bulk_deleted"
	EventCategoryChanged    = "category.changed"
)

// ProductEvent is the payload of the single-product events.
type ProductEvent struct {
	Product models.Product
}

// BulkDeleteEvent is the payload of EventProductBulkDeleted.
type BulkDeleteEvent struct {
	IDs     []uint
	Deleted int64
}

// CategoryEvent is the payload of EventCategoryChanged. Deleted is true when
// the category was removed.
type CategoryEvent struct {
	Category models.Category
	Deleted  bool
}
