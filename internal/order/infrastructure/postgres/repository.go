package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kidfavor/order-service/internal/order/domain"
)

// ErrDuplicateOrderNumber is returned when the unique constraint on
// order_number rejects an insert.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Migrate creates the order tables if they do not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			user_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			total_amount NUMERIC(19,2) NOT NULL,
			shipping_address TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC(19,2) NOT NULL,
			quantity INT NOT NULL,
			subtotal NUMERIC(19,2) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);
	`)
	return err
}

// Create writes the order and every item in one transaction. Either the
// whole aggregate lands or nothing does. Generated ids are written back
// into the aggregate.
func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, status, total_amount, shipping_address, phone_number, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		o.OrderNumber, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress, o.PhoneNumber, o.Notes, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, o.OrderNumber)
		}
		return err
	}

	for _, item := range o.Items {
		item.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id`,
			item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := r.scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.OrderNotFoundError{OrderID: id}
		}
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	o, err := r.scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE order_number=$1`, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.OrderNotFoundError{OrderNumber: orderNumber}
		}
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return r.list(ctx, selectOrder+` WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.list(ctx, selectOrder+` WHERE status=$1 ORDER BY created_at DESC`, status)
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`,
		id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.OrderNotFoundError{OrderID: id}
	}
	return nil
}

const selectOrder = `SELECT id, order_number, user_id, status, total_amount, shipping_address, phone_number, notes, created_at, updated_at FROM orders`

func (r *Repository) scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &o.PhoneNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) list(ctx context.Context, query string, arg any) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return err
		}
		o.Items = append(o.Items, &item)
	}
	return rows.Err()
}
