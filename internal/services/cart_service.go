package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"
	"scango/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest is what the customer gets back when asking to pay: the
// pending cart, whose ID is the payload of the QR code shown to the cashier,
// and the order snapshot.
type CheckoutRequest struct {
	Cart  *models.Cart  `json:"cart"`
	Order *models.Order `json:"order"`
}

// CartService runs the customer side of a shopping session.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	orders   *OrderService
	sessions *session.Manager
	broker   realtime.Broker
	logger   *zap.Logger
	now      func() time.Time
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, orders *OrderService, sessions *session.Manager, broker realtime.Broker, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		orders:   orders,
		sessions: sessions,
		broker:   broker,
		logger:   logger,
		now:      time.Now,
	}
}

// StartShopping binds the session to the user's cart. A cart still bound and
// not finished is kept; otherwise the user's oldest active cart is reused, or
// a new one is created.
func (s *CartService) StartShopping(ctx context.Context, sess *session.Session) (*models.Cart, error) {
	if sess.CartID != "" {
		cart, err := s.carts.GetByID(ctx, sess.CartID)
		switch {
		case err == nil && cart.UserID == sess.UserID && !cart.Status.Terminal():
			return cart, nil
		case err != nil && !apperrors.IsNotFound(err):
			return nil, err
		}
	}

	active, err := s.carts.GetByUserAndStatus(ctx, sess.UserID, models.CartActive)
	if err != nil {
		return nil, err
	}
	var cart *models.Cart
	if len(active) > 0 {
		cart = &active[0]
	} else {
		cart = models.NewCart(uuid.New().String(), sess.UserID, s.now())
		if err := s.carts.Create(ctx, cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		s.logger.Info("cart created", zap.String("cart_id", cart.ID), zap.String("user_id", sess.UserID))
		notify(ctx, s.broker, s.logger, realtime.CollectionCarts, cart.ID)
	}

	if err := s.sessions.BindCart(ctx, sess, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to bind cart to session: %w", err)
	}
	return cart, nil
}

// CurrentCart returns the cart bound to the session, starting one when none is.
func (s *CartService) CurrentCart(ctx context.Context, sess *session.Session) (*models.Cart, error) {
	if sess.CartID == "" {
		return s.StartShopping(ctx, sess)
	}
	return s.ownedCart(ctx, sess)
}

// AddProduct puts one unit of the product in the cart.
func (s *CartService) AddProduct(ctx context.Context, sess *session.Session, productID string) (*models.Cart, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, sess, product)
}

// ScanProduct resolves a scanned label and puts one unit in the cart.
func (s *CartService) ScanProduct(ctx context.Context, sess *session.Session, code string) (*models.Cart, error) {
	product, err := s.products.GetByScanCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, sess, product)
}

func (s *CartService) add(ctx context.Context, sess *session.Session, product *models.Product) (*models.Cart, error) {
	cart, err := s.editableCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := cart.AddProduct(*product); err != nil {
		return nil, err
	}
	return cart, s.save(ctx, cart)
}

// ChangeQuantity adds delta to a line. Increases are checked against the
// current catalog stock; a line reaching zero is removed.
func (s *CartService) ChangeQuantity(ctx context.Context, sess *session.Session, productID string, delta int) (*models.Cart, error) {
	if delta == 0 {
		return nil, apperrors.Invalid("delta", "must not be zero")
	}
	cart, err := s.editableCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if delta > 0 {
		if current := cart.Quantity(productID); current > math.MaxInt-delta {
			return nil, apperrors.Invalid("delta", "quantity too large")
		}
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if want := cart.Quantity(productID) + delta; product.Stock != nil && want > *product.Stock {
			return nil, &apperrors.StockLimitError{ProductID: product.ID, ProductName: product.Name, Available: *product.Stock}
		}
	}
	if err := cart.ChangeQuantity(productID, delta); err != nil {
		return nil, err
	}
	return cart, s.save(ctx, cart)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sess *session.Session, productID string) (*models.Cart, error) {
	cart, err := s.editableCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(productID); err != nil {
		return nil, err
	}
	return cart, s.save(ctx, cart)
}

// RequestCheckout moves the cart to pending and takes the order snapshot.
func (s *CartService) RequestCheckout(ctx context.Context, sess *session.Session) (*CheckoutRequest, error) {
	cart, err := s.ownedCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := cart.TransitionTo(models.CartPending, s.now()); err != nil {
		return nil, err
	}

	order, err := s.orders.CreateFromCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, cart); err != nil {
		s.logger.Error("cart left active after order was created",
			zap.String("cart_id", cart.ID), zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("checkout requested", zap.String("cart_id", cart.ID), zap.String("total", cart.TotalPrice.StringFixed(2)))
	return &CheckoutRequest{Cart: cart, Order: order}, nil
}

// CancelCheckout takes a pending cart back to active so the customer can keep
// shopping. The pending order is cancelled.
func (s *CartService) CancelCheckout(ctx context.Context, sess *session.Session) (*models.Cart, error) {
	cart, err := s.ownedCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartPending {
		return nil, apperrors.ErrNotReadyForCheckout
	}
	if err := cart.TransitionTo(models.CartActive, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.orders.MirrorCart(ctx, cart)
	return cart, nil
}

func (s *CartService) ownedCart(ctx context.Context, sess *session.Session) (*models.Cart, error) {
	if sess.CartID == "" {
		return nil, apperrors.NotFound("cart", "for session")
	}
	cart, err := s.carts.GetByID(ctx, sess.CartID)
	if err != nil {
		return nil, err
	}
	if cart.UserID != sess.UserID {
		return nil, apperrors.NotFound("cart", sess.CartID)
	}
	return cart, nil
}

func (s *CartService) editableCart(ctx context.Context, sess *session.Session) (*models.Cart, error) {
	cart, err := s.CurrentCart(ctx, sess)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartActive {
		return nil, apperrors.ErrCartNotEditable
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = s.now()
	if err := s.carts.Update(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	notify(ctx, s.broker, s.logger, realtime.CollectionCarts, cart.ID)
	return nil
}
