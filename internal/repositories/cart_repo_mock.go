package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
// Stored carts are cloned on the way in and out so callers never share item slices.
type MockCartRepository struct {
	carts map[string]*models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]*models.Cart),
	}
}

// GetAll returns all carts, newest first.
func (r *MockCartRepository) GetAll(ctx context.Context) ([]models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	carts := make([]models.Cart, 0, len(r.carts))
	for _, c := range r.carts {
		carts = append(carts, *c.Clone())
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.After(carts[j].CreatedAt) })
	return carts, nil
}

// GetByID returns a cart by its ID.
func (r *MockCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, apperrors.NotFound("cart", id)
	}
	return cart.Clone(), nil
}

// GetByUserAndStatus returns the user's carts in status, oldest first.
func (r *MockCartRepository) GetByUserAndStatus(ctx context.Context, userID string, status models.CartStatus) ([]models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var carts []models.Cart
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == status {
			carts = append(carts, *c.Clone())
		}
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.Before(carts[j].CreatedAt) })
	return carts, nil
}

// Create stores a new cart.
func (r *MockCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}
	cart.UpdatedAt = cart.CreatedAt
	if err := checkDocument("cart", cart.ID, cart); err != nil {
		return err
	}
	r.carts[cart.ID] = cart.Clone()
	return nil
}

// Update replaces a stored cart.
func (r *MockCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.ID]; !ok {
		return apperrors.NotFound("cart", cart.ID)
	}
	cart.UpdatedAt = time.Now()
	if err := checkDocument("cart", cart.ID, cart); err != nil {
		return err
	}
	r.carts[cart.ID] = cart.Clone()
	return nil
}
