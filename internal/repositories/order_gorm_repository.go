package repositories

import (
	"context"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) list(ctx context.Context, query *gorm.DB) ([]models.Order, error) {
	orders := []models.Order{}
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, apperrors.Remote("list orders", err)
	}
	for i := range orders {
		if err := checkDocument("order", orders[i].ID, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

// GetByUserID retrieves the user's orders, newest first.
func (r *GORMOrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// GetByID retrieves an order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "order", id)
	}
	if err := checkDocument("order", id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetLatestByCartID retrieves the newest order taken from cartID.
func (r *GORMOrderRepository) GetLatestByCartID(ctx context.Context, cartID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("created_at desc").First(&order).Error
	if err != nil {
		return nil, lookupError(err, "order for cart", cartID)
	}
	if err := checkDocument("order", order.ID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := checkDocument("order", order.ID, order); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperrors.Remote("create order", err)
	}
	return nil
}

// UpdateStatus sets the status and completion time of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, completedAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"completed_at": completedAt,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return apperrors.Remote("update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}
