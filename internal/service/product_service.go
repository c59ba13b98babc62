package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordersystem/internal/models"
	"ordersystem/internal/query"
	"ordersystem/internal/redisclient"
	"ordersystem/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductStore is the catalog persistence consumed by ProductService.
// Implemented by *store.Store.
type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ProductCache is the read-through cache for single-product lookups.
// Implemented by *redisclient.Client.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}

// CatalogEventPublisher publishes catalog change events.
// Implemented by *broker.EventPublisher.
type CatalogEventPublisher interface {
	PublishProductChanged(ctx context.Context, event *models.ProductChangedEvent) error
}

// ProductService owns the product catalog: queried listing, lookups and
// the admin write operations.
type ProductService struct {
	store     ProductStore
	cache     ProductCache
	publisher CatalogEventPublisher
	logger    *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store ProductStore, cache ProductCache, publisher CatalogEventPublisher) *ProductService {
	return &ProductService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// ListProducts returns the catalog view produced by the query pipeline:
// filter, then sort, then paginate over the full product sequence.
func (s *ProductService) ListProducts(ctx context.Context, opts query.Options) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return query.Apply(products, opts), nil
}

// GetProduct retrieves one product, serving from the cache when possible
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetProduct")
	defer span.End()

	cached, err := s.cache.GetProduct(ctx, id)
	if err == nil {
		util.ProductCacheHitsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if !errors.Is(err, redisclient.ErrCacheMiss) {
		s.logger.Warn("Product cache lookup failed, falling back to DB",
			zap.String("product_id", id),
			zap.Error(err))
	}
	util.ProductCacheHitsTotal.WithLabelValues("miss").Inc()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to cache product",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}
	return product, nil
}

// CreateProduct adds a catalog entry. Name and price are validated at the
// API boundary; the catalog assumes valid input.
func (s *ProductService) CreateProduct(ctx context.Context, name string, price float64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	product := &models.Product{
		ID:    uuid.New().String(),
		Name:  name,
		Price: price,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsWrittenTotal.WithLabelValues("create").Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name))

	s.publishChange(ctx, models.EventTypeProductCreated, product)
	return product, nil
}

// UpdateProduct overwrites every writable field of an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, id, name string, price float64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	product := &models.Product{ID: id, Name: name, Price: price}
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached product",
			zap.String("product_id", id),
			zap.Error(err))
	}

	util.ProductsWrittenTotal.WithLabelValues("update").Inc()
	s.logger.Info("Product updated", zap.String("product_id", id))

	s.publishChange(ctx, models.EventTypeProductUpdated, product)
	return nil
}

// DeleteProduct removes a product from the catalog
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached product",
			zap.String("product_id", id),
			zap.Error(err))
	}

	util.ProductsWrittenTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Product deleted", zap.String("product_id", id))

	s.publishChange(ctx, models.EventTypeProductDeleted, &models.Product{ID: id})
	return nil
}

// publishChange emits a catalog event. Publishing never fails the write
// that already committed; failures are logged and dropped.
func (s *ProductService) publishChange(ctx context.Context, eventType string, product *models.Product) {
	event := &models.ProductChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
	}

	if err := s.publisher.PublishProductChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish product event",
			zap.String("event_type", eventType),
			zap.String("product_id", product.ID),
			zap.Error(err))
	}
}
