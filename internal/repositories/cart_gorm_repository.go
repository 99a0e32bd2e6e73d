package repositories

import (
	"context"

	"scango/internal/apperrors"
	"scango/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) checkAll(carts []models.Cart) error {
	for i := range carts {
		if err := checkDocument("cart", carts[i].ID, &carts[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetAll retrieves all carts, newest first.
func (r *GORMCartRepository) GetAll(ctx context.Context) ([]models.Cart, error) {
	var carts []models.Cart
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&carts).Error; err != nil {
		return nil, apperrors.Remote("list carts", err)
	}
	if err := r.checkAll(carts); err != nil {
		return nil, err
	}
	return carts, nil
}

// GetByID retrieves a cart by its ID.
func (r *GORMCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "cart", id)
	}
	if err := checkDocument("cart", id, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByUserAndStatus retrieves the user's carts in status, oldest first.
func (r *GORMCartRepository) GetByUserAndStatus(ctx context.Context, userID string, status models.CartStatus) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at asc").
		Find(&carts).Error
	if err != nil {
		return nil, apperrors.Remote("list carts for user "+userID, err)
	}
	if err := r.checkAll(carts); err != nil {
		return nil, err
	}
	return carts, nil
}

// Create inserts a new cart.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := checkDocument("cart", cart.ID, cart); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return apperrors.Remote("create cart", err)
	}
	return nil
}

// Update replaces the stored cart document.
func (r *GORMCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	if err := checkDocument("cart", cart.ID, cart); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Cart{}).Where("id = ?", cart.ID).
		Select("items", "total_price", "status", "updated_at", "completed_at").
		Updates(cart)
	if res.Error != nil {
		return apperrors.Remote("update cart "+cart.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("cart", cart.ID)
	}
	return nil
}
