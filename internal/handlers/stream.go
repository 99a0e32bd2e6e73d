package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"scango/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	streamBuffer      = 8
	streamHeartbeat   = 15 * time.Second
	eventSnapshot     = "snapshot"
	eventStreamFailed = "error"
)

// streamEvent is one Server-Sent Event.
type streamEvent struct {
	Name string
	Data interface{}
}

// eventQueue is a bounded queue that drops its oldest event when full, so a
// slow client only ever misses intermediate snapshots.
type eventQueue chan streamEvent

func newEventQueue() eventQueue {
	return make(eventQueue, streamBuffer)
}

func (q eventQueue) push(ev streamEvent) {
	for {
		select {
		case q <- ev:
			return
		default:
		}
		select {
		case <-q:
		default:
		}
	}
}

// snapshot queues v, or the read error in its place.
func (q eventQueue) snapshot(v interface{}, err error) {
	if err != nil {
		q.push(streamEvent{Name: eventStreamFailed, Data: fiber.Map{"error": err.Error()}})
		return
	}
	q.push(streamEvent{Name: eventSnapshot, Data: v})
}

// writeEvents copies queued events to w until done is closed or the client
// goes away. A comment line is sent every heartbeat to keep proxies from
// closing an idle stream.
func writeEvents(w *bufio.Writer, events <-chan streamEvent, done <-chan struct{}, heartbeat time.Duration) error {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case ev := <-events:
			data, err := json.Marshal(ev.Data)
			if err != nil {
				return fmt.Errorf("encode %s event: %w", ev.Name, err)
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
}

// serveStream switches the response to an event stream fed by q. The
// subscription is closed when the client disconnects.
func serveStream(c *fiber.Ctx, logger *zap.Logger, q eventQueue, sub realtime.Subscription) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	path := c.Path()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		if err := writeEvents(w, q, nil, streamHeartbeat); err != nil {
			logger.Debug("event stream closed", zap.String("path", path), zap.Error(err))
		}
	}))
	return nil
}
