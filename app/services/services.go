package services

import (
	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/pkg/event"
)

// Services is every service the handlers and commands use, sharing one
// database handle, one validator set and one event dispatcher.
type Services struct {
	Products   *ProductService
	Categories *CategoryService
	Auth       *AuthService
	Events     *event.Dispatcher
}

// New wires the services over db. A nil dispatcher gets a private one.
func New(db *gorm.DB, events *event.Dispatcher) *Services {
	if events == nil {
		events = event.New()
	}
	validators := requests.NewValidators(repositories.NewExistenceChecker(db))
	return &Services{
		Products:   NewProductService(db, validators, events),
		Categories: NewCategoryService(db, validators, events),
		Auth:       NewAuthService(db),
		Events:     events,
	}
}
