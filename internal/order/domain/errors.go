package domain

import "fmt"

// The order workflow surfaces failures as a closed set of typed errors so
// every call site can match the exact case with errors.As. Validation errors
// are all detected before the local write begins; none of them ever requires
// compensation.

type UserNotFoundError struct {
	UserID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found with id: %d", e.UserID)
}

type UserInactiveError struct {
	UserID int64
}

func (e *UserInactiveError) Error() string {
	return fmt.Sprintf("user %d is inactive and cannot place orders", e.UserID)
}

// UserServiceUnavailableError means the User Directory could not be reached
// or answered ambiguously. It is deliberately distinct from UserNotFoundError:
// "service is down" must never be reported as "user does not exist".
type UserServiceUnavailableError struct {
	Err error
}

func (e *UserServiceUnavailableError) Error() string {
	return fmt.Sprintf("user service is currently unavailable: %v", e.Err)
}

func (e *UserServiceUnavailableError) Unwrap() error { return e.Err }

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found with id: %d", e.ProductID)
}

type ProductInactiveError struct {
	ProductID int64
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %d is inactive and cannot be ordered", e.ProductID)
}

type ProductServiceUnavailableError struct {
	Err error
}

func (e *ProductServiceUnavailableError) Error() string {
	return fmt.Sprintf("product service is currently unavailable: %v", e.Err)
}

func (e *ProductServiceUnavailableError) Unwrap() error { return e.Err }

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type OrderNotFoundError struct {
	OrderID     int64
	OrderNumber string
}

func (e *OrderNotFoundError) Error() string {
	if e.OrderNumber != "" {
		return fmt.Sprintf("order not found with order number: %s", e.OrderNumber)
	}
	return fmt.Sprintf("order not found with id: %d", e.OrderID)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	if e.From == StatusDelivered {
		return fmt.Sprintf("delivered orders can only be transitioned to %s", StatusRefunded)
	}
	return fmt.Sprintf("cannot change status of a %s order to %s", e.From, e.To)
}

type NotCancellableError struct {
	Status Status
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("order cannot be cancelled, current status: %s", e.Status)
}

// InvalidRequestError marks caller mistakes caught before any remote call.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return e.Reason }
