package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventVersion is carried on every OrderPlacedEvent for forward
// compatibility with consumers.
const EventVersion = "1.0"

// OrderPlacedEvent is the denormalized projection of a committed order plus
// the user snapshot, published to the message fabric keyed by order number.
type OrderPlacedEvent struct {
	OrderID       int64            `json:"orderId"`
	OrderNumber   string           `json:"orderNumber"`
	UserID        int64            `json:"userId"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerName  string           `json:"customerName"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	CreatedAt     time.Time        `json:"createdAt"`
	EventVersion  string           `json:"eventVersion"`
	Items         []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewOrderPlacedEvent builds the event from a persisted order and the user
// snapshot captured during validation.
func NewOrderPlacedEvent(o *Order, user *UserSnapshot) OrderPlacedEvent {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemEvent{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return OrderPlacedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		CustomerEmail: user.Email,
		CustomerName:  user.FullName,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		EventVersion:  EventVersion,
		Items:         items,
	}
}
