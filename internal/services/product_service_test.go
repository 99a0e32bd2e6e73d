package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/scancode"
	"scango/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductService(repo *MockProductRepository) *services.ProductService {
	codes := &scancode.Generator{
		Now:  func() time.Time { return time.UnixMilli(1718000000123) },
		IntN: func(int) int { return 42 },
	}
	return services.NewProductService(repo, codes, zap.NewNop())
}

func notFoundCode(code string) error {
	return apperrors.NotFound("product with scan code", code)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: decimal.NewFromInt(10)},
		{ID: "2", Name: "Product B", Price: decimal.NewFromInt(20), Stock: models.IntPtr(50)},
	}
	mockRepo.On("GetAll", mock.Anything).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByScanCode(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	beer := &models.Product{ID: "1", Name: "Beer", ScanCode: "5410228881476"}
	mockRepo.On("GetByScanCode", mock.Anything, "5410228881476").Return(beer, nil).Once()
	mockRepo.On("GetByScanCode", mock.Anything, "unknown").Return(nil, notFoundCode("unknown")).Once()

	product, err := service.GetProductByScanCode(context.Background(), " 5410228881476 ")
	require.NoError(t, err)
	assert.Equal(t, "Beer", product.Name)

	_, err = service.GetProductByScanCode(context.Background(), "unknown")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProductService_CreateProduct_GeneratesCode(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("GetByScanCode", mock.Anything, "PRODUCT_red-wine_1718000000123").Return(nil, notFoundCode("x")).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), services.ProductInput{
		Name:           " Red Wine ",
		Price:          decimal.RequireFromString("12.99"),
		AgeRestriction: models.IntPtr(18),
	})

	require.NoError(t, err)
	assert.Equal(t, "Red Wine", product.Name)
	assert.Equal(t, "PRODUCT_red-wine_1718000000123", product.ScanCode)
	assert.Equal(t, 18, product.RequiredAge())
	assert.True(t, product.Unlimited())
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Barcode(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("GetByScanCode", mock.Anything, mock.Anything).Return(nil, notFoundCode("x")).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), services.ProductInput{
		Name:     "Bread",
		Price:    decimal.RequireFromString("2.49"),
		CodeKind: scancode.KindBarcode,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(product.ScanCode, "BC1718000000123"))
}

func TestProductService_CreateProduct_Rejects(t *testing.T) {
	t.Run("negative price", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.NewFromInt(-1),
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("sub-cent price", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.RequireFromString("1.999"),
		})
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "price")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("price too large", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.NewFromInt(100000000),
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("trailing zeros are fine", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByScanCode", mock.Anything, "CHIPS-1").Return(nil, notFoundCode("CHIPS-1")).Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
		product, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.RequireFromString("1.500"), ScanCode: "CHIPS-1",
		})
		require.NoError(t, err)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("1.5")))
	})

	t.Run("negative stock", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.NewFromInt(1), Stock: models.IntPtr(-3),
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("unreadable code", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "Chips", Price: decimal.NewFromInt(1), ScanCode: "tab\there",
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("duplicate code", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByScanCode", mock.Anything, "8710398780089").
			Return(&models.Product{ID: "other", Name: "Chips"}, nil).Once()
		_, err := newProductService(mockRepo).CreateProduct(context.Background(), services.ProductInput{
			Name: "More Chips", Price: decimal.NewFromInt(1), ScanCode: "8710398780089",
		})
		assert.True(t, errors.Is(err, apperrors.ErrConflict))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_UpdateProduct_KeepsScanCode(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{ID: "1", Name: "Milk", Price: decimal.RequireFromString("1.89"), ScanCode: "8718452393053"}
	mockRepo.On("GetByID", mock.Anything, "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.UpdateProduct(context.Background(), "1", services.ProductInput{
		Name:  "Whole Milk",
		Price: decimal.RequireFromString("1.99"),
		Stock: models.IntPtr(5),
	})

	require.NoError(t, err)
	assert.Equal(t, "8718452393053", product.ScanCode)
	assert.Equal(t, "Whole Milk", product.Name)
	assert.Equal(t, 5, *product.Stock)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("Delete", mock.Anything, "1").Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, "nonexistent").Return(apperrors.NotFound("product", "nonexistent")).Once()

	assert.NoError(t, service.DeleteProduct(context.Background(), "1"))
	assert.True(t, errors.Is(service.DeleteProduct(context.Background(), "nonexistent"), apperrors.ErrNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_ReduceStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "limited").
		Return(&models.Product{ID: "limited", Name: "Whiskey", Stock: models.IntPtr(3)}, nil).Once()
	mockRepo.On("GetByID", mock.Anything, "unlimited").
		Return(&models.Product{ID: "unlimited", Name: "Water"}, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.ReduceStock(context.Background(), "limited", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, *product.Stock)

	product, err = service.ReduceStock(context.Background(), "unlimited", 5)
	require.NoError(t, err)
	assert.True(t, product.Unlimited())

	_, err = service.ReduceStock(context.Background(), "limited", 0)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	mockRepo.AssertExpectations(t)
}
