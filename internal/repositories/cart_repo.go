package repositories

import (
	"context"

	"scango/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetAll(ctx context.Context) ([]models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	// GetByUserAndStatus returns the user's carts in the given status, oldest first.
	GetByUserAndStatus(ctx context.Context, userID string, status models.CartStatus) ([]models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	// Update replaces the stored cart document.
	Update(ctx context.Context, cart *models.Cart) error
}
