package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"scango/internal/apperrors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPrefix = "scango:"

// RedisBroker carries notifications over Redis pub/sub so every API replica
// sees changes made by the others.
type RedisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroker creates a RedisBroker on client.
func NewRedisBroker(client *redis.Client, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

func channel(collection string) string {
	return channelPrefix + collection
}

// Publish sends n on the collection's channel.
func (b *RedisBroker) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := b.client.Publish(ctx, channel(n.Collection), payload).Err(); err != nil {
		return apperrors.Remote("publish notification", err)
	}
	return nil
}

// Subscribe listens on the collection's channel. The subscription is
// confirmed before Subscribe returns.
func (b *RedisBroker) Subscribe(ctx context.Context, collection string, fn Handler) (Subscription, error) {
	ps := b.client.Subscribe(ctx, channel(collection))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, apperrors.Remote("subscribe "+collection, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Warn("dropping malformed notification",
					zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			fn(n)
		}
	}()

	return OnClose(func() error {
		err := ps.Close()
		<-done
		return err
	}), nil
}
