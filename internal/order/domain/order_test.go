package domain

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productFixture(id int64, price int64, stock int) *ProductSnapshot {
	return &ProductSnapshot{
		ID:     id,
		Name:   "Wooden Train Set",
		Price:  decimal.NewFromInt(price),
		Stock:  stock,
		Active: true,
	}
}

func TestNewOrderItemSnapshotsSubtotal(t *testing.T) {
	item := NewOrderItem(productFixture(3, 100000, 5), 2)

	assert.Equal(t, int64(3), item.ProductID)
	assert.Equal(t, "Wooden Train Set", item.ProductName)
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(200000)),
		"subtotal = unit price * quantity, got %s", item.Subtotal)
}

func TestAddItemBackLinksToParent(t *testing.T) {
	o := NewOrder(7, "", "", "")
	o.ID = 42

	item := NewOrderItem(productFixture(3, 100000, 5), 1)
	o.AddItem(item)

	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(42), item.OrderID)
}

func TestRecomputeTotalIsExplicit(t *testing.T) {
	o := NewOrder(7, "", "", "")
	o.AddItem(NewOrderItem(productFixture(3, 100000, 5), 2))
	o.AddItem(NewOrderItem(productFixture(9, 50000, 10), 1))

	// AddItem must not touch the total; the workflow calls RecomputeTotal
	// exactly once after the item loop.
	assert.True(t, o.TotalAmount.IsZero(), "AddItem must not update the total")

	o.RecomputeTotal()
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(250000)),
		"total = sum of subtotals, got %s", o.TotalAmount)
}

func TestNewOrderDefaults(t *testing.T) {
	o := NewOrder(7, "12 Elm Street", "555-0101", "leave at door")

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(7), o.UserID)
	assert.Equal(t, "12 Elm Street", o.ShippingAddress)
	assert.True(t, o.TotalAmount.IsZero())
	assert.False(t, o.CreatedAt.IsZero())
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{14}-[0-9A-F]{8}$`)

	a := GenerateOrderNumber()
	b := GenerateOrderNumber()

	assert.Regexp(t, pattern, a)
	assert.Regexp(t, pattern, b)
	assert.NotEqual(t, a, b)
}
