package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/repositories"
	"scango/internal/scancode"
	"scango/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput is the admin product form. An empty ScanCode means "generate
// one" on create and "keep the current one" on update.
type ProductInput struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Price          decimal.Decimal `json:"price" validate:"gte=0,lt=100000000"`
	ScanCode       string          `json:"scan_code"`
	CodeKind       scancode.Kind   `json:"code_kind" validate:"omitempty,oneof=qr barcode"`
	AgeRestriction *int            `json:"age_restriction" validate:"omitempty,gte=0"`
	Stock          *int            `json:"stock" validate:"omitempty,gte=0"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	codes    *scancode.Generator
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, codes *scancode.Generator, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		codes:    codes,
		validate: validation.New(),
		logger:   logger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProductByScanCode resolves a scanned label to its product.
func (s *ProductService) GetProductByScanCode(ctx context.Context, code string) (*models.Product, error) {
	return s.repo.GetByScanCode(ctx, strings.TrimSpace(code))
}

// CreateProduct adds a product to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.ScanCode)
	if code == "" {
		generated, err := s.codes.New(in.CodeKind, in.Name)
		if err != nil {
			return nil, apperrors.Invalid("code_kind", err.Error())
		}
		code = generated
	}
	if err := s.checkScanCode(ctx, code, ""); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:           in.Name,
		Price:          in.Price,
		ScanCode:       code,
		AgeRestriction: in.AgeRestriction,
		Stock:          in.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("scan_code", product.ScanCode))
	return product, nil
}

// UpdateProduct replaces the editable fields of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if code := strings.TrimSpace(in.ScanCode); code != "" && code != product.ScanCode {
		if err := s.checkScanCode(ctx, code, id); err != nil {
			return nil, err
		}
		product.ScanCode = code
	}
	product.Name = in.Name
	product.Price = in.Price
	product.AgeRestriction = in.AgeRestriction
	product.Stock = in.Stock

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ReduceStock lowers the product's stock by quantity, clamping at zero.
// Products with unlimited stock are returned unchanged.
func (s *ProductService) ReduceStock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, apperrors.Invalid("quantity", "must be greater than zero")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Unlimited() {
		return product, nil
	}
	product.ReduceStock(quantity)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to reduce stock: %w", err)
	}
	s.logger.Info("stock reduced", zap.String("product_id", id), zap.Int("quantity", quantity), zap.Int("stock", *product.Stock))
	return product, nil
}

func (s *ProductService) checkInput(in ProductInput) error {
	if err := validation.Struct(s.validate, in); err != nil {
		return err
	}
	if !in.Price.Equal(in.Price.Round(models.PriceScale)) {
		return apperrors.Invalid("price", fmt.Sprintf("at most %d decimal places", models.PriceScale))
	}
	return nil
}

// checkScanCode rejects codes no scanner can read and codes already used by
// another product.
func (s *ProductService) checkScanCode(ctx context.Context, code, ownerID string) error {
	if err := scancode.Validate(code); err != nil {
		return apperrors.Invalid("scan_code", err.Error())
	}
	existing, err := s.repo.GetByScanCode(ctx, code)
	switch {
	case err == nil && existing.ID != ownerID:
		return apperrors.Conflict("scan code %s already in use by %s", code, existing.Name)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return err
	}
	return nil
}
