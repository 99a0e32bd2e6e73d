package repositories

import (
	"context"

	"scango/internal/apperrors"
	"scango/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, apperrors.Remote("list products", err)
	}
	for i := range products {
		if err := checkDocument("product", products[i].ID, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "product", id)
	}
	if err := checkDocument("product", id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByScanCode retrieves the product labelled with code.
func (r *GORMProductRepository) GetByScanCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "scan_code = ?", code).Error; err != nil {
		return nil, lookupError(err, "product with scan code", code)
	}
	if err := checkDocument("product", product.ID, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := checkDocument("product", product.ID, product); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return apperrors.Remote("create product", err)
	}
	return nil
}

// Update replaces an existing product in the database.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := checkDocument("product", product.ID, product); err != nil {
		return err
	}
	var existing models.Product
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&existing, "id = ?", product.ID).Error; err != nil {
		return lookupError(err, "product", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return apperrors.Remote("update product", err)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Remote("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
