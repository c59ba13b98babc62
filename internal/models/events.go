package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductUpdated = "PRODUCT_UPDATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order commits
type OrderCreatedEvent struct {
	BaseEvent
	OrderID    string   `json:"order_id"`
	UserID     string   `json:"user_id"`
	ProductIDs []string `json:"product_ids"`
}

// ProductChangedEvent published on catalog writes (create, update, delete)
type ProductChangedEvent struct {
	BaseEvent
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
}
