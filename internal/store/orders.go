package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordersystem/internal/models"
)

// CreateOrderTx persists an order and its association-table rows in one
// transaction. Either the order row and every order_products row commit
// together, or nothing is written.
func (s *Store) CreateOrderTx(ctx context.Context, order *models.Order, productIDs []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, user_id)
		VALUES ($1, $2)
		RETURNING created_at`

	if err := tx.GetContext(ctx, &order.CreatedAt, query, order.ID, order.UserID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, productID := range productIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_products (order_id, product_id) VALUES ($1, $2)",
			order.ID, productID)
		if err != nil {
			return fmt.Errorf("failed to insert order product %s: %w", productID, err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// GetOrdersByUserID retrieves orders belonging to a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrderProducts retrieves the products referenced by an order
func (s *Store) GetOrderProducts(ctx context.Context, orderID string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.* FROM products p
		JOIN order_products op ON op.product_id = p.id
		WHERE op.order_id = $1
		ORDER BY p.created_at`, orderID)
	return products, err
}
