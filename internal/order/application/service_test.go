package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidfavor/order-service/internal/order/domain"
)

type fakeRepo struct {
	mu        sync.Mutex
	nextID    int64
	orders    map[int64]*domain.Order
	createErr error
	created   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[int64]*domain.Order{}}
}

func (r *fakeRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	o.ID = r.nextID
	for _, item := range o.Items {
		item.OrderID = o.ID
	}
	r.orders[o.ID] = o
	r.created++
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &domain.OrderNotFoundError{OrderID: id}
	}
	return o, nil
}

func (r *fakeRepo) GetByOrderNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, &domain.OrderNotFoundError{OrderNumber: orderNumber}
}

func (r *fakeRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return &domain.OrderNotFoundError{OrderID: id}
	}
	o.Status = status
	return nil
}

type fakeUsers struct {
	users map[int64]*domain.UserSnapshot
	err   error
}

func (f *fakeUsers) FetchUser(_ context.Context, id int64) (*domain.UserSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, &domain.UserNotFoundError{UserID: id}
	}
	return u, nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[int64]*domain.ProductSnapshot
	err      error
	fetches  map[int64]int
}

func newFakeProducts(products ...*domain.ProductSnapshot) *fakeProducts {
	f := &fakeProducts{
		products: map[int64]*domain.ProductSnapshot{},
		fetches:  map[int64]int{},
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) FetchProduct(_ context.Context, id int64) (*domain.ProductSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[id]++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	snapshot := *p
	return &snapshot, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	orders []*domain.Order
	users  []*domain.UserSnapshot
}

func (f *fakePublisher) OrderPlaced(_ context.Context, o *domain.Order, user *domain.UserSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	f.users = append(f.users, user)
}

func (f *fakePublisher) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	users     *fakeUsers
	products  *fakeProducts
	publisher *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		repo: newFakeRepo(),
		users: &fakeUsers{users: map[int64]*domain.UserSnapshot{
			7: {ID: 7, FullName: "Alex Tran", Email: "alex@example.com", Active: true},
		}},
		products: newFakeProducts(
			&domain.ProductSnapshot{ID: 3, Name: "Wooden Train Set", Price: decimal.NewFromInt(100000), Stock: 5, Active: true},
			&domain.ProductSnapshot{ID: 9, Name: "Plush Bear", Price: decimal.NewFromInt(50000), Stock: 0, Active: true},
		),
		publisher: &fakePublisher{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(log, f.repo, f.users, f.products, f.publisher)
	return f
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := newFixture()

	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          7,
		Items:           []LineItem{{ProductID: 3, Quantity: 2}},
		ShippingAddress: "12 Elm Street",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(200000)), "total %s", o.TotalAmount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Wooden Train Set", o.Items[0].ProductName)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.NewFromInt(100000)))

	assert.Equal(t, 1, f.repo.created)
	require.Equal(t, 1, f.publisher.published())
	assert.Equal(t, "alex@example.com", f.publisher.users[0].Email)
}

func TestPlaceOrderInsufficientStockAbortsEverything(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items: []LineItem{
			{ProductID: 3, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		},
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(9), stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)

	assert.Equal(t, 0, f.repo.created, "nothing may be written on a failed gate")
	assert.Equal(t, 0, f.publisher.published(), "no notification without a commit")
}

func TestPlaceOrderUserGates(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 999,
			Items:  []LineItem{{ProductID: 3, Quantity: 1}},
		})
		var notFound *domain.UserNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, 0, f.repo.created)
	})

	t.Run("user inactive", func(t *testing.T) {
		f := newFixture()
		f.users.users[8] = &domain.UserSnapshot{ID: 8, Active: false}
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 8,
			Items:  []LineItem{{ProductID: 3, Quantity: 1}},
		})
		var inactive *domain.UserInactiveError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, 0, f.repo.created)
	})

	t.Run("user service unavailable", func(t *testing.T) {
		f := newFixture()
		f.users.err = &domain.UserServiceUnavailableError{Err: errors.New("connection refused")}
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 7,
			Items:  []LineItem{{ProductID: 3, Quantity: 1}},
		})
		var down *domain.UserServiceUnavailableError
		require.ErrorAs(t, err, &down)
		assert.Equal(t, 0, f.repo.created)
	})
}

func TestPlaceOrderProductGates(t *testing.T) {
	t.Run("product not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 7,
			Items:  []LineItem{{ProductID: 404, Quantity: 1}},
		})
		var notFound *domain.ProductNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(404), notFound.ProductID)
		assert.Equal(t, 0, f.repo.created)
	})

	t.Run("product inactive", func(t *testing.T) {
		f := newFixture()
		f.products.products[11] = &domain.ProductSnapshot{ID: 11, Name: "Retired Toy", Price: decimal.NewFromInt(10), Stock: 3, Active: false}
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 7,
			Items:  []LineItem{{ProductID: 11, Quantity: 1}},
		})
		var inactive *domain.ProductInactiveError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, 0, f.repo.created)
	})

	t.Run("product service unavailable", func(t *testing.T) {
		f := newFixture()
		f.products.err = &domain.ProductServiceUnavailableError{Err: errors.New("gateway timeout")}
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
			UserID: 7,
			Items:  []LineItem{{ProductID: 3, Quantity: 1}},
		})
		var down *domain.ProductServiceUnavailableError
		require.ErrorAs(t, err, &down)
		assert.Equal(t, 0, f.repo.created)
	})
}

func TestPlaceOrderFetchesDistinctProductsOnce(t *testing.T) {
	f := newFixture()

	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items: []LineItem{
			{ProductID: 3, Quantity: 1},
			{ProductID: 3, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.products.fetches[3], "duplicate product ids must be deduplicated")
	assert.Len(t, o.Items, 2, "every requested line still becomes an item")
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(300000)))
}

func TestPlaceOrderSnapshotsAreImmuneToCatalogChanges(t *testing.T) {
	f := newFixture()

	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)

	// Catalog price changes after the order was placed.
	f.products.products[3].Price = decimal.NewFromInt(999999)

	stored, err := f.svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(100000)),
		"recorded unit price must reflect the catalog at creation time")
}

func TestPlaceOrderNoPublishWhenPersistFails(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("duplicate key value violates unique constraint")

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.publisher.published(),
		"a rolled back transaction must never produce a notification")
}

func TestPlaceOrderInputValidation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		in   PlaceOrderInput
	}{
		{"missing user", PlaceOrderInput{Items: []LineItem{{ProductID: 3, Quantity: 1}}}},
		{"no items", PlaceOrderInput{UserID: 7}},
		{"zero quantity", PlaceOrderInput{UserID: 7, Items: []LineItem{{ProductID: 3, Quantity: 0}}}},
		{"missing product id", PlaceOrderInput{UserID: 7, Items: []LineItem{{Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), tc.in)
			var bad *domain.InvalidRequestError
			require.ErrorAs(t, err, &bad)
		})
	}
	assert.Equal(t, 0, f.repo.created)
}

func TestUpdateStatusEnforcesStateMachine(t *testing.T) {
	f := newFixture()
	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	// Drive to DELIVERED, then only REFUNDED is allowed.
	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusDelivered)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusShipped)
	var badTransition *domain.InvalidTransitionError
	require.ErrorAs(t, err, &badTransition)

	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusRefunded)
	require.NoError(t, err)

	// Refunded is terminal.
	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusPending)
	require.ErrorAs(t, err, &badTransition)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture()
	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)

	cancelled, err := f.svc.CancelOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	// Shipped orders are past the point of no return.
	o2, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), o2.ID, domain.StatusShipped)
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(context.Background(), o2.ID)
	var notCancellable *domain.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, domain.StatusShipped, notCancellable.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetOrder(context.Background(), 12345)
	var notFound *domain.OrderNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReadsAreIdempotent(t *testing.T) {
	f := newFixture()
	o, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: 7,
		Items:  []LineItem{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)

	first, err := f.svc.GetOrderByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)
	second, err := f.svc.GetOrderByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
