package application

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kidfavor/order-service/internal/order/domain"
)

// Service orchestrates the order creation workflow and the read/status
// operations. Every validation gate runs before the local transaction opens,
// so a failing gate never needs compensation.
type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	users     UserDirectory
	products  ProductCatalog
	publisher OrderPlacedPublisher
}

func NewService(log *slog.Logger, repo OrderRepository, users UserDirectory, products ProductCatalog, publisher OrderPlacedPublisher) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		users:     users,
		products:  products,
		publisher: publisher,
	}
}

// LineItem is one requested (product, quantity) pair.
type LineItem struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderInput carries everything needed to create an order.
type PlaceOrderInput struct {
	UserID          int64
	Items           []LineItem
	ShippingAddress string
	PhoneNumber     string
	Notes           string
}

func (in PlaceOrderInput) validate() error {
	if in.UserID <= 0 {
		return &domain.InvalidRequestError{Reason: "userId is required"}
	}
	if len(in.Items) == 0 {
		return &domain.InvalidRequestError{Reason: "order must contain at least one item"}
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 {
			return &domain.InvalidRequestError{Reason: "productId is required for every item"}
		}
		if item.Quantity < 1 {
			return &domain.InvalidRequestError{Reason: "quantity must be at least 1"}
		}
	}
	return nil
}

// PlaceOrder runs the creation workflow: validate the user and every
// referenced product against the remote services, check stock per line,
// build the aggregate from the validated snapshots, persist atomically, and
// hand the committed order to the publisher. Any gate failure aborts before
// anything is written.
//
// User and product validation run concurrently; both finish before the
// transaction opens so no remote call ever holds it up.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "creating order", "user_id", in.UserID, "items", len(in.Items))

	var user *domain.UserSnapshot
	products := make(map[int64]*domain.ProductSnapshot, len(in.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.validateUser(gctx, in.UserID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		// Fetch each distinct product once, fail-fast on the first error.
		for _, id := range distinctProductIDs(in.Items) {
			p, err := s.validateProduct(gctx, id)
			if err != nil {
				return err
			}
			products[id] = p
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		p := products[item.ProductID]
		if p.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: p.Stock,
			}
		}
	}

	o := domain.NewOrder(in.UserID, in.ShippingAddress, in.PhoneNumber, in.Notes)
	for _, item := range in.Items {
		o.AddItem(domain.NewOrderItem(products[item.ProductID], item.Quantity))
	}
	o.RecomputeTotal()

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "order created", "order_id", o.ID, "order_number", o.OrderNumber)

	// Commit acknowledged; only now does the announcement leave the process.
	s.publisher.OrderPlaced(ctx, o, user)

	return o, nil
}

func (s *Service) validateUser(ctx context.Context, userID int64) (*domain.UserSnapshot, error) {
	user, err := s.users.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, &domain.UserInactiveError{UserID: userID}
	}
	return user, nil
}

func (s *Service) validateProduct(ctx context.Context, productID int64) (*domain.ProductSnapshot, error) {
	p, err := s.products.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, &domain.ProductInactiveError{ProductID: productID}
	}
	return p, nil
}

func distinctProductIDs(items []LineItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// GetOrder returns one order with its items.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOrderByNumber returns one order looked up by its business key.
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repo.GetByOrderNumber(ctx, orderNumber)
}

// ListUserOrders returns all orders placed by a user.
func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListOrdersByStatus returns all orders currently in the given state.
func (s *Service) ListOrdersByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return s.repo.ListByStatus(ctx, status)
}

// UpdateStatus moves an order to the requested lifecycle state, enforcing
// the transition rules.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next domain.Status) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: next}
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order status updated", "order_id", id, "from", o.Status, "to", next)
	o.Status = next
	return o, nil
}

// CancelOrder cancels an order if it is still in a cancellable state.
func (s *Service) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		return nil, &domain.NotCancellableError{Status: o.Status}
	}
	if err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order cancelled", "order_id", id)
	o.Status = domain.StatusCancelled
	return o, nil
}
