package domain

import "github.com/shopspring/decimal"

// UserSnapshot is the read-once copy of a user taken from the User Directory
// at validation time. It gates order creation and feeds the outbound
// notification; it is never persisted by this service.
type UserSnapshot struct {
	ID       int64
	FullName string
	Email    string
	Active   bool
}

// ProductSnapshot is the read-once copy of a product taken from the Product
// Catalog at validation time. Its name and price are copied into order items
// so historical orders are immune to later catalog changes.
type ProductSnapshot struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Stock  int
	Active bool
}
