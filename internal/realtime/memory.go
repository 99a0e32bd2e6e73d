package realtime

import (
	"context"
	"sync"
)

// MemoryBroker delivers notifications synchronously within one process.
type MemoryBroker struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

// NewMemoryBroker creates an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{handlers: make(map[string]map[int]Handler)}
}

// Publish calls every handler subscribed to n.Collection. Handlers run outside
// the lock so they may subscribe or unsubscribe.
func (b *MemoryBroker) Publish(ctx context.Context, n Notification) error {
	b.mu.RLock()
	subs := make([]Handler, 0, len(b.handlers[n.Collection]))
	for _, h := range b.handlers[n.Collection] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, h := range subs {
		h(n)
	}
	return nil
}

// Subscribe registers fn for collection.
func (b *MemoryBroker) Subscribe(ctx context.Context, collection string, fn Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[collection] == nil {
		b.handlers[collection] = make(map[int]Handler)
	}
	b.handlers[collection][id] = fn

	return OnClose(func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[collection], id)
		return nil
	}), nil
}
