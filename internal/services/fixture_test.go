package services_test

import (
	"context"
	"testing"
	"time"

	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"
	"scango/internal/services"
	"scango/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixture wires the services over in-memory repositories.
type fixture struct {
	products  *repositories.MockProductRepository
	carts     *repositories.MockCartRepository
	orders    *repositories.MockOrderRepository
	sessions  *session.Manager
	broker    *realtime.MemoryBroker
	publisher *recordingPublisher

	orderService    *services.OrderService
	cartService     *services.CartService
	checkoutService *services.CheckoutService
	watchService    *services.WatchService
}

func newFixture(t *testing.T, opts services.CheckoutOptions) *fixture {
	t.Helper()
	f := &fixture{
		products:  repositories.NewMockProductRepository(),
		carts:     repositories.NewMockCartRepository(),
		orders:    repositories.NewMockOrderRepository(),
		sessions:  session.NewManager(session.NewMemoryStore(), time.Hour),
		broker:    realtime.NewMemoryBroker(),
		publisher: &recordingPublisher{},
	}
	logger := zap.NewNop()
	f.orderService = services.NewOrderService(f.orders, f.publisher, f.broker, logger)
	f.cartService = services.NewCartService(f.carts, f.products, f.orderService, f.sessions, f.broker, logger)
	f.checkoutService = services.NewCheckoutService(f.carts, f.products, f.orderService, f.broker, opts, logger)
	f.watchService = services.NewWatchService(f.carts, f.broker, logger)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, ageRestriction, stock *int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:           name,
		Price:          decimal.RequireFromString(price),
		ScanCode:       "CODE-" + name,
		AgeRestriction: ageRestriction,
		Stock:          stock,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) customer(t *testing.T, userID string) *session.Session {
	t.Helper()
	sess, err := f.sessions.Start(context.Background(), userID, userID+"@example.com", userID, session.RoleCustomer)
	require.NoError(t, err)
	_, err = f.cartService.StartShopping(context.Background(), sess)
	require.NoError(t, err)
	return sess
}

// pendingCart fills a fresh customer's cart with one unit of each product and
// requests checkout.
func (f *fixture) pendingCart(t *testing.T, userID string, products ...*models.Product) *models.Cart {
	t.Helper()
	ctx := context.Background()
	sess := f.customer(t, userID)
	for _, p := range products {
		_, err := f.cartService.AddProduct(ctx, sess, p.ID)
		require.NoError(t, err)
	}
	req, err := f.cartService.RequestCheckout(ctx, sess)
	require.NoError(t, err)
	return req.Cart
}

func (f *fixture) cart(t *testing.T, id string) *models.Cart {
	t.Helper()
	cart, err := f.carts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return cart
}

func (f *fixture) orderFor(t *testing.T, cartID string) *models.Order {
	t.Helper()
	order, err := f.orders.GetLatestByCartID(context.Background(), cartID)
	require.NoError(t, err)
	return order
}
