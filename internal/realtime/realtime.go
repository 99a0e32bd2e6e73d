// Package realtime fans out change notifications for stored documents so
// clients can hold live views of carts.
package realtime

import (
	"context"
	"sync"
)

// Collections that publish notifications.
const (
	CollectionCarts  = "carts"
	CollectionOrders = "orders"
)

// Notification says that a document in Collection changed.
type Notification struct {
	Collection string `json:"collection"`
	DocumentID string `json:"document_id"`
}

// Handler receives notifications for a subscribed collection.
type Handler func(Notification)

// Broker publishes and delivers notifications.
type Broker interface {
	Publish(ctx context.Context, n Notification) error
	// Subscribe registers fn for every notification on collection until the
	// returned Subscription is closed.
	Subscribe(ctx context.Context, collection string, fn Handler) (Subscription, error)
}

// Subscription is a live registration. Close is safe to call more than once.
type Subscription interface {
	Close() error
}

type closeOnce struct {
	once sync.Once
	fn   func() error
	err  error
}

func (c *closeOnce) Close() error {
	c.once.Do(func() { c.err = c.fn() })
	return c.err
}

// OnClose wraps fn as an idempotent Subscription.
func OnClose(fn func() error) Subscription {
	return &closeOnce{fn: fn}
}
