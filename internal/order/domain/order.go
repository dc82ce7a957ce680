package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate root for a placed order. It owns its items: an item
// belongs to exactly one order and is never shared or re-parented.
type Order struct {
	ID              int64
	OrderNumber     string
	UserID          int64
	Status          Status
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PhoneNumber     string
	Notes           string
	Items           []*OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem records the product name and unit price as they were at order
// creation time, so later catalog changes never alter historical orders.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// NewOrder builds an empty aggregate with header fields only. Items are
// appended afterwards with AddItem, followed by exactly one RecomputeTotal
// call before the order is persisted.
func NewOrder(userID int64, shippingAddress, phoneNumber, notes string) *Order {
	now := time.Now().UTC()
	return &Order{
		OrderNumber:     GenerateOrderNumber(),
		UserID:          userID,
		Status:          StatusPending,
		TotalAmount:     decimal.Zero,
		ShippingAddress: shippingAddress,
		PhoneNumber:     phoneNumber,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewOrderItem snapshots the validated product data into a line item.
// Subtotal is fixed at construction: unit price times quantity.
func NewOrderItem(product *ProductSnapshot, quantity int) *OrderItem {
	return &OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// AddItem appends the item and back-links it to this order. It does not
// update the total; callers append all items first and then call
// RecomputeTotal once.
func (o *Order) AddItem(item *OrderItem) {
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
}

// RecomputeTotal sets TotalAmount to the sum of all item subtotals.
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.TotalAmount = total
}

// GenerateOrderNumber returns a globally unique business key of the form
// ORD-<yyyymmddhhmmss>-<8 char random>.
func GenerateOrderNumber() string {
	timestamp := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", timestamp, suffix)
}
