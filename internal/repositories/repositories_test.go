package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stores struct {
	products repositories.ProductRepository
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.Order{}, &models.User{}))
	return db
}

// forEachStore runs fn against the in-memory and the sqlite-backed repositories.
func forEachStore(t *testing.T, fn func(t *testing.T, s stores)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, stores{
			products: repositories.NewMockProductRepository(),
			carts:    repositories.NewMockCartRepository(),
			orders:   repositories.NewMockOrderRepository(),
			users:    repositories.NewMockUserRepository(),
		})
	})
	t.Run("gorm", func(t *testing.T) {
		db := openTestDB(t)
		fn(t, stores{
			products: repositories.NewGORMProductRepository(db),
			carts:    repositories.NewGORMCartRepository(db),
			orders:   repositories.NewGORMOrderRepository(db),
			users:    repositories.NewGORMUserRepository(db),
		})
	})
}

func beer() *models.Product {
	return &models.Product{
		Name:           "Beer",
		Price:          decimal.RequireFromString("3.99"),
		ScanCode:       "5410228881476",
		AgeRestriction: models.IntPtr(18),
		Stock:          models.IntPtr(10),
	}
}

func TestProductRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		p := beer()
		require.NoError(t, s.products.Create(ctx, p))
		assert.NotEmpty(t, p.ID)

		got, err := s.products.GetByScanCode(ctx, "5410228881476")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("3.99")))
		assert.Equal(t, 18, got.RequiredAge())

		_, err = s.products.GetByScanCode(ctx, "nope")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))

		got.Name = "Lager"
		got.Stock = models.IntPtr(4)
		require.NoError(t, s.products.Update(ctx, got))
		got, err = s.products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lager", got.Name)
		assert.Equal(t, 4, *got.Stock)

		all, err := s.products.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, s.products.Delete(ctx, p.ID))
		_, err = s.products.GetByID(ctx, p.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
		assert.True(t, errors.Is(s.products.Delete(ctx, p.ID), apperrors.ErrNotFound))
	})
}

func TestProductRepository_RejectsMalformedDocument(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		p := &models.Product{Name: "", Price: decimal.NewFromInt(-1), ScanCode: "X"}
		err := s.products.Create(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestCartRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		p := beer()
		require.NoError(t, s.products.Create(ctx, p))

		now := time.Now()
		older := models.NewCart(uuid.NewString(), "user-1", now.Add(-time.Minute))
		newer := models.NewCart(uuid.NewString(), "user-1", now)
		require.NoError(t, s.carts.Create(ctx, older))
		require.NoError(t, s.carts.Create(ctx, newer))

		active, err := s.carts.GetByUserAndStatus(ctx, "user-1", models.CartActive)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, older.ID, active[0].ID)

		require.NoError(t, older.AddProduct(*p))
		require.NoError(t, older.AddProduct(*p))
		require.NoError(t, older.TransitionTo(models.CartPending, time.Now()))
		require.NoError(t, s.carts.Update(ctx, older))

		got, err := s.carts.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CartPending, got.Status)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("7.98")))

		pending, err := s.carts.GetByUserAndStatus(ctx, "user-1", models.CartPending)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		_, err = s.carts.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestCartRepository_RejectsInconsistentTotal(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		cart := models.NewCart(uuid.NewString(), "user-1", time.Now())
		require.NoError(t, s.carts.Create(ctx, cart))

		cart.Items = []models.CartItem{{Product: *beer(), Quantity: 1}}
		cart.Items[0].Product.ID = "p-1"
		cart.TotalPrice = decimal.NewFromInt(100)
		err := s.carts.Update(ctx, cart)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))

		stored, err := s.carts.GetByID(ctx, cart.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Items)
	})
}

func TestCartRepository_RejectsTotalBeyondColumnRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		cart := models.NewCart(uuid.NewString(), "user-1", time.Now())
		require.NoError(t, s.carts.Create(ctx, cart))

		item := *beer()
		item.ID = "p-1"
		item.Price = decimal.RequireFromString("99999999.99")
		cart.Items = []models.CartItem{{Product: item, Quantity: 2}}
		cart.Recalculate()

		err := s.carts.Update(ctx, cart)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.False(t, errors.Is(err, apperrors.ErrRemote))
	})
}

func TestOrderRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		p := beer()
		require.NoError(t, s.products.Create(ctx, p))

		cart := models.NewCart(uuid.NewString(), "user-1", time.Now())
		require.NoError(t, cart.AddProduct(*p))

		first := models.NewOrderFromCart(uuid.NewString(), cart, time.Now().Add(-time.Hour))
		second := models.NewOrderFromCart(uuid.NewString(), cart, time.Now())
		require.NoError(t, s.orders.Create(ctx, first))
		require.NoError(t, s.orders.Create(ctx, second))

		orders, err := s.orders.GetByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)

		latest, err := s.orders.GetLatestByCartID(ctx, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)

		completedAt := time.Now()
		require.NoError(t, s.orders.UpdateStatus(ctx, second.ID, models.OrderCompleted, &completedAt))
		got, err := s.orders.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)

		none, err := s.orders.GetByUserID(ctx, "someone-else")
		require.NoError(t, err)
		assert.Empty(t, none)

		assert.True(t, errors.Is(s.orders.UpdateStatus(ctx, "missing", models.OrderCancelled, nil), apperrors.ErrNotFound))
	})
}

func TestUserRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
		require.NoError(t, s.users.Create(ctx, user))

		got, err := s.users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		dup := &models.User{Name: "Other", Email: "ada@example.com", Password: "hash"}
		err = s.users.Create(ctx, dup)
		assert.True(t, errors.Is(err, apperrors.ErrConflict))

		_, err = s.users.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}
