package domain

import "fmt"

// Status is the order lifecycle state.
//
// Forward path: PENDING → CONFIRMED → PROCESSING → SHIPPED → DELIVERED.
// CANCELLED and REFUNDED are absorbing states.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// ParseStatus converts the wire representation into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Terminal states allow nothing; delivered orders may only be refunded.
// Every other transition is permitted, stricter sequencing being a product
// decision rather than a structural one.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusCancelled, StatusRefunded:
		return false
	case StatusDelivered:
		return next == StatusRefunded
	}
	return true
}

// Cancellable reports whether an order in this state may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}
