package service

import (
	"context"
	"testing"

	"ordersystem/internal/models"
	"ordersystem/internal/query"
	"ordersystem/internal/redisclient"
	"ordersystem/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductStore struct {
	products map[string]models.Product
	order    []string
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	f := &fakeProductStore{products: make(map[string]models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeProductStore) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProductStore) GetProducts(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.products[id])
	}
	return out, nil
}

func (f *fakeProductStore) GetProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) CreateProduct(_ context.Context, product *models.Product) error {
	f.products[product.ID] = *product
	f.order = append(f.order, product.ID)
	return nil
}

func (f *fakeProductStore) UpdateProduct(_ context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductStore) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeProductCache struct {
	entries     map[string]models.Product
	invalidated []string
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: make(map[string]models.Product)}
}

func (f *fakeProductCache) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.entries[id]
	if !ok {
		return nil, redisclient.ErrCacheMiss
	}
	return &p, nil
}

func (f *fakeProductCache) SetProduct(_ context.Context, product *models.Product) error {
	f.entries[product.ID] = *product
	return nil
}

func (f *fakeProductCache) InvalidateProduct(_ context.Context, id string) error {
	delete(f.entries, id)
	f.invalidated = append(f.invalidated, id)
	return nil
}

type fakeCatalogPublisher struct {
	events []*models.ProductChangedEvent
}

func (f *fakeCatalogPublisher) PublishProductChanged(_ context.Context, event *models.ProductChangedEvent) error {
	f.events = append(f.events, event)
	return nil
}

func TestListProductsAppliesQueryPipeline(t *testing.T) {
	productStore := newFakeProductStore(
		models.Product{ID: "p1", Name: "Keyboard", Price: 45.50},
		models.Product{ID: "p2", Name: "Monitor", Price: 220.00},
		models.Product{ID: "p3", Name: "Cable", Price: 9.99},
	)
	svc := NewProductService(productStore, newFakeProductCache(), &fakeCatalogPublisher{})

	min := 10.0
	products, err := svc.ListProducts(context.Background(), query.Options{
		MinimumPrice:        &min,
		OrderByPropertyName: "price",
		IsDescending:        true,
	})
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "p2", products[0].ID)
	assert.Equal(t, "p1", products[1].ID)
}

func TestGetProductPopulatesCache(t *testing.T) {
	productStore := newFakeProductStore(models.Product{ID: "p1", Name: "Keyboard", Price: 45.50})
	cache := newFakeProductCache()
	svc := NewProductService(productStore, cache, &fakeCatalogPublisher{})

	product, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)

	// second read is served from the cache even if the store changes
	productStore.products["p1"] = models.Product{ID: "p1", Name: "Renamed", Price: 45.50}
	cached, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", cached.Name)
}

func TestGetProductNotFound(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), newFakeProductCache(), &fakeCatalogPublisher{})

	_, err := svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateProductPublishesEvent(t *testing.T) {
	productStore := newFakeProductStore()
	publisher := &fakeCatalogPublisher{}
	svc := NewProductService(productStore, newFakeProductCache(), publisher)

	product, err := svc.CreateProduct(context.Background(), "Headset", 79.90)
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventTypeProductCreated, publisher.events[0].EventType)
	assert.Equal(t, product.ID, publisher.events[0].ProductID)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	productStore := newFakeProductStore(models.Product{ID: "p1", Name: "Keyboard", Price: 45.50})
	cache := newFakeProductCache()
	svc := NewProductService(productStore, cache, &fakeCatalogPublisher{})

	// warm the cache, then update
	_, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	err = svc.UpdateProduct(context.Background(), "p1", "Mechanical Keyboard", 89.90)
	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, "p1")

	refreshed, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mechanical Keyboard", refreshed.Name)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), newFakeProductCache(), &fakeCatalogPublisher{})

	err := svc.UpdateProduct(context.Background(), "missing", "Name", 1.00)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProductNotFound(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), newFakeProductCache(), &fakeCatalogPublisher{})

	err := svc.DeleteProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
