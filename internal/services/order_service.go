package services

import (
	"context"
	"fmt"
	"time"

	"scango/internal/apperrors"
	"scango/internal/events"
	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher events.Publisher
	broker    realtime.Broker
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, publisher events.Publisher, broker realtime.Broker, logger *zap.Logger) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		broker:    broker,
		logger:    logger,
		now:       time.Now,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// GetUserOrders is the user's order history, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// CreateFromCart snapshots the cart's items and total into a pending order.
func (s *OrderService) CreateFromCart(ctx context.Context, cart *models.Cart) (*models.Order, error) {
	order := models.NewOrderFromCart(uuid.New().String(), cart, s.now())
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// MirrorCart copies the cart's status onto the latest order taken from it.
// The cart is authoritative, so a failed mirror is logged and not returned.
func (s *OrderService) MirrorCart(ctx context.Context, cart *models.Cart) {
	order, err := s.orderRepo.GetLatestByCartID(ctx, cart.ID)
	if err != nil {
		s.logger.Error("order mirror lookup failed", zap.String("cart_id", cart.ID), zap.Error(err))
		return
	}
	status := models.OrderStatusFor(cart.Status)
	if order.Status == status {
		return
	}
	var completedAt *time.Time
	if status == models.OrderCompleted {
		completedAt = cart.CompletedAt
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, status, completedAt); err != nil {
		s.logger.Error("order mirror update failed",
			zap.String("order_id", order.ID), zap.String("status", string(status)), zap.Error(err))
		return
	}
	order.Status = status
	order.CompletedAt = completedAt
	s.publish(ctx, events.TypeFor(status), order)
}

// UpdateOrderStatus lets an admin settle a pending order as completed or
// cancelled. Finished orders are never reopened.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.Invalid("status", fmt.Sprintf("invalid order status: %s", status))
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, &apperrors.TransitionError{From: string(order.Status), To: string(status)}
	}

	var completedAt *time.Time
	if status == models.OrderCompleted {
		now := s.now()
		completedAt = &now
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	order.Status = status
	order.CompletedAt = completedAt
	s.publish(ctx, events.TypeFor(status), order)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, t events.EventType, order *models.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, order, s.now())); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", string(t)), zap.String("order_id", order.ID), zap.Error(err))
	}
	notify(ctx, s.broker, s.logger, realtime.CollectionOrders, order.ID)
}
