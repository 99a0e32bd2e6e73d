package services

import (
	"context"

	"scango/internal/realtime"

	"go.uber.org/zap"
)

// notify tells subscribers a document changed. Delivery failures only cost
// subscribers a refresh, so they are logged.
func notify(ctx context.Context, broker realtime.Broker, logger *zap.Logger, collection, id string) {
	if broker == nil {
		return
	}
	err := broker.Publish(ctx, realtime.Notification{Collection: collection, DocumentID: id})
	if err != nil {
		logger.Warn("change notification failed",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
	}
}
