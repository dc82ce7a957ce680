package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kidfavor/order-service/internal/order/application"
	"github.com/kidfavor/order-service/internal/order/domain"
)

type placeOrderRequest struct {
	UserID          int64              `json:"userId"`
	Items           []orderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	PhoneNumber     string             `json:"phoneNumber"`
	Notes           string             `json:"notes"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r placeOrderRequest) validate() error {
	if r.UserID <= 0 {
		return &domain.InvalidRequestError{Reason: "userId is required"}
	}
	if len(r.Items) == 0 {
		return &domain.InvalidRequestError{Reason: "order must contain at least one item"}
	}
	if len(r.ShippingAddress) > 500 {
		return &domain.InvalidRequestError{Reason: "shipping address must not exceed 500 characters"}
	}
	if len(r.PhoneNumber) > 20 {
		return &domain.InvalidRequestError{Reason: "phone number must not exceed 20 characters"}
	}
	if len(r.Notes) > 500 {
		return &domain.InvalidRequestError{Reason: "notes must not exceed 500 characters"}
	}
	for _, item := range r.Items {
		if item.ProductID <= 0 {
			return &domain.InvalidRequestError{Reason: "productId is required for every item"}
		}
		if item.Quantity < 1 {
			return &domain.InvalidRequestError{Reason: "quantity must be at least 1"}
		}
	}
	return nil
}

func (r placeOrderRequest) toInput() application.PlaceOrderInput {
	items := make([]application.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, application.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return application.PlaceOrderInput{
		UserID:          r.UserID,
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		PhoneNumber:     r.PhoneNumber,
		Notes:           r.Notes,
	}
}

type orderResponse struct {
	ID              int64               `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          int64               `json:"userId"`
	Status          domain.Status       `json:"status"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress,omitempty"`
	PhoneNumber     string              `json:"phoneNumber,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type orderItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PhoneNumber:     o.PhoneNumber,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
