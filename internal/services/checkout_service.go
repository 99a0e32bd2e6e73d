package services

import (
	"context"
	"fmt"
	"time"

	"scango/internal/apperrors"
	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"

	"go.uber.org/zap"
)

// ScanResult is the outcome of the cashier scanning a customer's cart code.
type ScanResult struct {
	Cart                    *models.Cart      `json:"cart"`
	Completed               bool              `json:"completed"`
	AwaitingAgeVerification bool              `json:"awaiting_age_verification"`
	RequiredAge             int               `json:"required_age,omitempty"`
	RestrictedItems         []models.CartItem `json:"restricted_items,omitempty"`
}

// EditLine is one desired quantity in an admin cart edit.
type EditLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CheckoutOptions tune checkout completion.
type CheckoutOptions struct {
	// DecrementStock lowers catalog stock by the sold quantities on completion.
	DecrementStock bool
}

// CheckoutService runs the cashier side: resolving scanned carts, the age
// gate, completion, cancellation and order edits.
type CheckoutService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	orders   *OrderService
	broker   realtime.Broker
	opts     CheckoutOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(carts repositories.CartRepository, products repositories.ProductRepository, orders *OrderService, broker realtime.Broker, opts CheckoutOptions, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		products: products,
		orders:   orders,
		broker:   broker,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ListCarts returns all carts, or only those in status when it is set.
func (s *CheckoutService) ListCarts(ctx context.Context, status string) ([]models.Cart, error) {
	all, err := s.carts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" || status == "all" {
		return all, nil
	}
	want := models.CartStatus(status)
	if !want.Valid() {
		return nil, apperrors.Invalid("status", fmt.Sprintf("unknown cart status %q", status))
	}
	filtered := []models.Cart{}
	for _, c := range all {
		if c.Status == want {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// GetCart looks a cart up by ID.
func (s *CheckoutService) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	return s.carts.GetByID(ctx, id)
}

// Scan resolves a scanned cart ID. Carts without age-restricted items are
// completed at once; others wait for VerifyAge.
func (s *CheckoutService) Scan(ctx context.Context, cartID string) (*ScanResult, error) {
	cart, err := s.pendingCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if required := cart.RequiredAge(); required > 0 {
		return &ScanResult{
			Cart:                    cart,
			AwaitingAgeVerification: true,
			RequiredAge:             required,
			RestrictedItems:         cart.RestrictedItems(),
		}, nil
	}
	if err := s.complete(ctx, cart); err != nil {
		return nil, err
	}
	return &ScanResult{Cart: cart, Completed: true}, nil
}

// VerifyAge completes the checkout when age meets the cart's requirement.
// A lower age leaves the cart pending so the cashier can cancel it.
func (s *CheckoutService) VerifyAge(ctx context.Context, cartID string, age int) (*ScanResult, error) {
	if age < 0 || age > 150 {
		return nil, apperrors.Invalid("age", "must be between 0 and 150")
	}
	cart, err := s.pendingCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	required := cart.RequiredAge()
	if age < required {
		s.logger.Info("age verification failed", zap.String("cart_id", cartID), zap.Int("required", required))
		return nil, &apperrors.AgeVerificationError{RequiredAge: required, EnteredAge: age}
	}
	if err := s.complete(ctx, cart); err != nil {
		return nil, err
	}
	return &ScanResult{Cart: cart, Completed: true, RequiredAge: required}, nil
}

// Cancel rejects a pending cart. The whole order is cancelled.
func (s *CheckoutService) Cancel(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.pendingCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.TransitionTo(models.CartCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.orders.MirrorCart(ctx, cart)
	s.logger.Info("checkout cancelled", zap.String("cart_id", cartID))
	return cart, nil
}

// SaveEdit applies the cashier's desired quantities to a cart that is not yet
// finished. Quantities of zero or less remove the line; products not already
// in the cart are rejected. A pending cart may not be saved empty.
func (s *CheckoutService) SaveEdit(ctx context.Context, cartID string, lines []EditLine) (*models.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status.Terminal() {
		return nil, apperrors.ErrCartNotEditable
	}

	for _, line := range lines {
		if cart.IndexOf(line.ProductID) < 0 {
			return nil, apperrors.Invalid("items", fmt.Sprintf("product %s is not in the cart", line.ProductID))
		}
		if line.Quantity > cart.Quantity(line.ProductID) {
			if err := s.checkStock(ctx, line.ProductID, line.Quantity); err != nil {
				return nil, err
			}
		}
		if err := cart.SetQuantity(line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	if cart.Status == models.CartPending && len(cart.Items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CheckoutService) checkStock(ctx context.Context, productID string, quantity int) error {
	product, err := s.products.GetByID(ctx, productID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if product.Stock != nil && quantity > *product.Stock {
		return &apperrors.StockLimitError{ProductID: product.ID, ProductName: product.Name, Available: *product.Stock}
	}
	return nil
}

func (s *CheckoutService) pendingCart(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartPending {
		return nil, apperrors.ErrNotReadyForCheckout
	}
	return cart, nil
}

func (s *CheckoutService) complete(ctx context.Context, cart *models.Cart) error {
	cart.Recalculate()
	if err := cart.TransitionTo(models.CartCompleted, s.now()); err != nil {
		return err
	}
	if err := s.save(ctx, cart); err != nil {
		return err
	}
	s.orders.MirrorCart(ctx, cart)
	if s.opts.DecrementStock {
		s.decrementStock(ctx, cart)
	}
	s.logger.Info("checkout completed", zap.String("cart_id", cart.ID), zap.String("total", cart.TotalPrice.StringFixed(2)))
	return nil
}

// decrementStock lowers catalog stock after a sale. The sale already stands,
// so failures are logged.
func (s *CheckoutService) decrementStock(ctx context.Context, cart *models.Cart) {
	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.Product.ID)
		if err != nil {
			s.logger.Warn("stock not decremented", zap.String("product_id", item.Product.ID), zap.Error(err))
			continue
		}
		if product.Unlimited() {
			continue
		}
		product.ReduceStock(item.Quantity)
		if err := s.products.Update(ctx, product); err != nil {
			s.logger.Warn("stock not decremented", zap.String("product_id", product.ID), zap.Error(err))
		}
	}
}

func (s *CheckoutService) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = s.now()
	if err := s.carts.Update(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	notify(ctx, s.broker, s.logger, realtime.CollectionCarts, cart.ID)
	return nil
}
