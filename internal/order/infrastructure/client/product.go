package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kidfavor/order-service/internal/order/domain"
)

// ProductClient talks to the Product Catalog service (GET /products/{id}).
type ProductClient struct {
	c *httpClient
}

func NewProductClient(log *slog.Logger, cfg Config) *ProductClient {
	return &ProductClient{c: newHTTPClient(log.With("client", "product-catalog"), cfg)}
}

type productDTO struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  *int            `json:"stock"`
	Active *bool           `json:"active"`
}

// FetchProduct returns the product snapshot or one of
// domain.ProductNotFoundError, domain.ProductServiceUnavailableError.
func (p *ProductClient) FetchProduct(ctx context.Context, id int64) (*domain.ProductSnapshot, error) {
	var dto productDTO
	if err := p.c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &dto); err != nil {
		if isNotFound(err) {
			return nil, &domain.ProductNotFoundError{ProductID: id}
		}
		return nil, &domain.ProductServiceUnavailableError{Err: err}
	}
	stock := 0
	if dto.Stock != nil {
		stock = *dto.Stock
	}
	active := dto.Active != nil && *dto.Active
	return &domain.ProductSnapshot{
		ID:     dto.ID,
		Name:   dto.Name,
		Price:  dto.Price,
		Stock:  stock,
		Active: active,
	}, nil
}
