package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kidfavor/order-service/internal/order/domain"
)

// UserClient talks to the User Directory service (GET /users/{id}).
type UserClient struct {
	c *httpClient
}

func NewUserClient(log *slog.Logger, cfg Config) *UserClient {
	return &UserClient{c: newHTTPClient(log.With("client", "user-directory"), cfg)}
}

type userDTO struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	IsActive *bool  `json:"isActive"`
}

// FetchUser returns the user snapshot or one of domain.UserNotFoundError,
// domain.UserServiceUnavailableError.
func (u *UserClient) FetchUser(ctx context.Context, id int64) (*domain.UserSnapshot, error) {
	var dto userDTO
	if err := u.c.getJSON(ctx, fmt.Sprintf("/users/%d", id), &dto); err != nil {
		if isNotFound(err) {
			return nil, &domain.UserNotFoundError{UserID: id}
		}
		return nil, &domain.UserServiceUnavailableError{Err: err}
	}
	// A missing isActive field means the directory could not vouch for the
	// account; treat it as inactive rather than guessing.
	active := dto.IsActive != nil && *dto.IsActive
	return &domain.UserSnapshot{
		ID:       dto.ID,
		FullName: dto.FullName,
		Email:    dto.Email,
		Active:   active,
	}, nil
}
