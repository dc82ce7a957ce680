package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kidfavor/order-service/internal/order/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the closed domain error set onto HTTP statuses.
//
// A missing user or product referenced by the request is a caller error
// (400), not 404: the missing entity is a parameter, not the requested
// resource. Dependency outages are 503 so clients know the order was not
// created and may retry. Anything unclassified is a 500 with the detail
// kept server-side.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		userNotFound   *domain.UserNotFoundError
		userInactive   *domain.UserInactiveError
		userDown       *domain.UserServiceUnavailableError
		prodNotFound   *domain.ProductNotFoundError
		prodInactive   *domain.ProductInactiveError
		prodDown       *domain.ProductServiceUnavailableError
		noStock        *domain.InsufficientStockError
		orderNotFound  *domain.OrderNotFoundError
		badTransition  *domain.InvalidTransitionError
		notCancellable *domain.NotCancellableError
		badRequest     *domain.InvalidRequestError
	)

	switch {
	case errors.As(err, &orderNotFound):
		h.log.WarnContext(ctx, "order not found", "err", err)
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: err.Error()})
	case errors.As(err, &userNotFound),
		errors.As(err, &userInactive),
		errors.As(err, &prodNotFound),
		errors.As(err, &prodInactive),
		errors.As(err, &noStock),
		errors.As(err, &badTransition),
		errors.As(err, &notCancellable),
		errors.As(err, &badRequest):
		h.log.WarnContext(ctx, "order request rejected", "err", err)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	case errors.As(err, &userDown):
		h.log.ErrorContext(ctx, "user service unavailable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			Success: false,
			Message: "Unable to process order. User Service is currently unavailable.",
		})
	case errors.As(err, &prodDown):
		h.log.ErrorContext(ctx, "product service unavailable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			Success: false,
			Message: "Unable to process order. Product Service is currently unavailable.",
		})
	default:
		h.log.ErrorContext(ctx, "unexpected error", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Message: "Internal server error",
		})
	}
}
