package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordersystem/internal/models"
	"ordersystem/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoValidProducts rejects an order whose requested product IDs all
	// resolve to nothing. The order is never constructed or persisted.
	ErrNoValidProducts = errors.New("service: no valid product ids supplied")

	// ErrOwnerNotFound rejects an owner-scoped order listing for an
	// account that does not exist.
	ErrOwnerNotFound = errors.New("service: owner not found")
)

// OrderStore is the order persistence consumed by OrderService.
// Implemented by *store.Store.
type OrderStore interface {
	CreateOrderTx(ctx context.Context, order *models.Order, productIDs []string) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetOrderProducts(ctx context.Context, orderID string) ([]models.Product, error)
}

// ProductResolver resolves requested product IDs to existing products,
// silently dropping unknown IDs. Implemented by *store.Store.
type ProductResolver interface {
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// UserDirectory answers account existence checks against the user store.
// Implemented by *store.Store.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// OrderEventPublisher publishes order events.
// Implemented by *broker.EventPublisher.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
}

// OrderDetail pairs an order with the products it references
type OrderDetail struct {
	Order    models.Order     `json:"order"`
	Products []models.Product `json:"products"`
}

// OrderService builds and persists order aggregates
type OrderService struct {
	store     OrderStore
	products  ProductResolver
	users     UserDirectory
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store OrderStore,
	products ProductResolver,
	users UserDirectory,
	publisher OrderEventPublisher,
) *OrderService {
	return &OrderService{
		store:     store,
		products:  products,
		users:     users,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrder resolves the requested product IDs against the catalog and
// persists an order referencing the resolved set. Unknown IDs are dropped,
// not reported; an empty resolved set fails with ErrNoValidProducts. The
// order row and its association rows commit in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, productIDs []string, ownerID string) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("resolve_error").Inc()
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	if len(products) == 0 {
		util.OrdersFailedTotal.WithLabelValues("no_valid_products").Inc()
		return nil, ErrNoValidProducts
	}

	resolvedIDs := make([]string, len(products))
	for i, p := range products {
		resolvedIDs[i] = p.ID
	}

	order := &models.Order{
		ID:     uuid.New().String(),
		UserID: ownerID,
	}

	if err := s.store.CreateOrderTx(ctx, order, resolvedIDs); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", ownerID),
		zap.Int("product_count", len(products)))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		UserID:     order.UserID,
		ProductIDs: resolvedIDs,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &OrderDetail{Order: *order, Products: products}, nil
}

// GetOrder retrieves an order and its products
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	products, err := s.store.GetOrderProducts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{Order: *order, Products: products}, nil
}

// ListOrders retrieves every order in the system
func (s *OrderService) ListOrders(ctx context.Context) ([]OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachProducts(ctx, orders)
}

// ListOrdersByOwner retrieves the orders of one account. The owner must
// exist: an empty result and an unknown owner are different answers, and
// administrators querying on behalf of a user should see which one.
func (s *OrderService) ListOrdersByOwner(ctx context.Context, ownerID string) ([]OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrdersByOwner")
	defer span.End()

	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if !exists {
		return nil, ErrOwnerNotFound
	}

	orders, err := s.store.GetOrdersByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.attachProducts(ctx, orders)
}

func (s *OrderService) attachProducts(ctx context.Context, orders []models.Order) ([]OrderDetail, error) {
	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		products, err := s.store.GetOrderProducts(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, OrderDetail{Order: order, Products: products})
	}
	return details, nil
}
