package application

import (
	"context"

	"github.com/kidfavor/order-service/internal/order/domain"
)

// OrderRepository persists orders. Create must write the order and all its
// items in one all-or-nothing transaction and fill in generated identifiers.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}

// UserDirectory fetches a user snapshot from the remote user service.
// Failures are one of domain.UserNotFoundError or
// domain.UserServiceUnavailableError.
type UserDirectory interface {
	FetchUser(ctx context.Context, id int64) (*domain.UserSnapshot, error)
}

// ProductCatalog fetches a product snapshot from the remote product service.
// Failures are one of domain.ProductNotFoundError or
// domain.ProductServiceUnavailableError.
type ProductCatalog interface {
	FetchProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error)
}

// OrderPlacedPublisher announces a committed order to the message fabric.
// The call must not block and must never surface a failure to the caller;
// it is invoked only after the local transaction has committed.
type OrderPlacedPublisher interface {
	OrderPlaced(ctx context.Context, o *domain.Order, user *domain.UserSnapshot)
}
