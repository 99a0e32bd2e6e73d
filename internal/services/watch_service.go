package services

import (
	"context"
	"sync"

	"scango/internal/models"
	"scango/internal/realtime"
	"scango/internal/repositories"

	"go.uber.org/zap"
)

// CartCallback receives a full cart snapshot, or the error that prevented reading it.
type CartCallback func(cart *models.Cart, err error)

// CartsCallback receives the whole cart collection.
type CartsCallback func(carts []models.Cart, err error)

// WatchService turns change notifications into live snapshots.
type WatchService struct {
	carts  repositories.CartRepository
	broker realtime.Broker
	logger *zap.Logger
}

// NewWatchService creates a new WatchService.
func NewWatchService(carts repositories.CartRepository, broker realtime.Broker, logger *zap.Logger) *WatchService {
	return &WatchService{carts: carts, broker: broker, logger: logger}
}

// watch serializes deliveries and guarantees none starts after Close returns.
// Callbacks must not call Close themselves.
type watch struct {
	mu     sync.Mutex
	closed bool
	sub    realtime.Subscription
	once   sync.Once
	err    error
}

func (w *watch) deliver(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		fn()
	}
}

func (w *watch) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		if w.sub != nil {
			w.err = w.sub.Close()
		}
	})
	return w.err
}

// WatchCart delivers the cart now and again after every change to it.
func (s *WatchService) WatchCart(ctx context.Context, cartID string, fn CartCallback) (realtime.Subscription, error) {
	read := func() {
		cart, err := s.carts.GetByID(ctx, cartID)
		fn(cart, err)
	}
	return s.subscribe(ctx, func(n realtime.Notification) bool { return n.DocumentID == cartID }, read)
}

// WatchCarts delivers the whole cart collection now and after every change.
func (s *WatchService) WatchCarts(ctx context.Context, fn CartsCallback) (realtime.Subscription, error) {
	read := func() {
		carts, err := s.carts.GetAll(ctx)
		fn(carts, err)
	}
	return s.subscribe(ctx, func(realtime.Notification) bool { return true }, read)
}

func (s *WatchService) subscribe(ctx context.Context, match func(realtime.Notification) bool, read func()) (realtime.Subscription, error) {
	w := &watch{}
	w.mu.Lock()
	defer w.mu.Unlock()

	sub, err := s.broker.Subscribe(ctx, realtime.CollectionCarts, func(n realtime.Notification) {
		if match(n) {
			w.deliver(read)
		}
	})
	if err != nil {
		return nil, err
	}
	w.sub = sub
	read()
	return w, nil
}
