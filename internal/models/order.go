package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the outcome of the cart an order was taken from.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no status change leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether an order may move from s to next. Only a
// pending order changes, and only to one of the terminal statuses.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderPending && next.Terminal()
}

// Order is the snapshot of a cart taken when the customer asked to check out.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"required"`
	UserID      string          `json:"user_id" gorm:"index;type:varchar(36);not null" validate:"required"`
	CartID      string          `json:"cart_id" gorm:"index;type:varchar(36);not null" validate:"required"`
	Items       []CartItem      `json:"items" gorm:"serializer:json;type:text" validate:"omitempty,dive"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null" validate:"gte=0,lt=100000000"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(16);not null" validate:"required,oneof=pending completed cancelled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewOrderFromCart copies the cart's lines and total into a pending order.
func NewOrderFromCart(id string, cart *Cart, now time.Time) *Order {
	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)
	return &Order{
		ID:         id,
		UserID:     cart.UserID,
		CartID:     cart.ID,
		Items:      items,
		TotalPrice: cart.TotalPrice,
		Status:     OrderPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// OrderStatusFor maps a cart status to the status its order should carry.
// Carts that went back to active have their order cancelled.
func OrderStatusFor(status CartStatus) OrderStatus {
	switch status {
	case CartPending:
		return OrderPending
	case CartCompleted:
		return OrderCompleted
	default:
		return OrderCancelled
	}
}
