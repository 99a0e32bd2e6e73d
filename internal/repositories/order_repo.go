package repositories

import (
	"context"
	"time"

	"scango/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByUserID returns the user's orders, newest first.
	GetByUserID(ctx context.Context, userID string) ([]models.Order, error)
	// GetLatestByCartID returns the most recent order taken from the cart.
	GetLatestByCartID(ctx context.Context, cartID string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, completedAt *time.Time) error
}
