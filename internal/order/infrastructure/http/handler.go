package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kidfavor/order-service/internal/order/application"
	"github.com/kidfavor/order-service/internal/order/domain"
)

// OrderService is the application surface the handler needs.
type OrderService interface {
	PlaceOrder(ctx context.Context, in application.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, next domain.Status) (*domain.Order, error)
	CancelOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

// Routes mounts the order endpoints. postMiddleware wraps only the order
// submission route (idempotency protection lives there, reads stay cheap).
func (h *Handler) Routes(postMiddleware ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.With(postMiddleware...).Post("/orders", h.placeOrder)
	r.Get("/orders", h.listByStatus)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/order-number/{orderNumber}", h.getOrderByNumber)
	r.Get("/orders/user/{userId}", h.listByUser)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Patch("/orders/{id}/cancel", h.cancelOrder)
	return r
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, &domain.InvalidRequestError{Reason: "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	o, err := h.service.PlaceOrder(ctx, req.toInput())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Order created successfully",
		Data:    toOrderResponse(o),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	o, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toOrderResponse(o)})
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderByNumber")
	defer span.End()

	o, err := h.service.GetOrderByNumber(ctx, chi.URLParam(r, "orderNumber"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toOrderResponse(o)})
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListUserOrders")
	defer span.End()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		h.writeError(ctx, w, &domain.InvalidRequestError{Reason: "invalid user id"})
		return
	}
	orders, err := h.service.ListUserOrders(ctx, userID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toOrderResponses(orders)})
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrdersByStatus")
	defer span.End()

	status, err := domain.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(ctx, w, &domain.InvalidRequestError{Reason: err.Error()})
		return
	}
	orders, err := h.service.ListOrdersByStatus(ctx, status)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toOrderResponses(orders)})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, &domain.InvalidRequestError{Reason: "invalid request body"})
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.writeError(ctx, w, &domain.InvalidRequestError{Reason: err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(ctx, id, status)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Order status updated",
		Data:    toOrderResponse(o),
	})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	o, err := h.service.CancelOrder(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Order cancelled",
		Data:    toOrderResponse(o),
	})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &domain.InvalidRequestError{Reason: "invalid order id"}
	}
	return id, nil
}
