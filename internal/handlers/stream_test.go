package handlers

import (
	"bufio"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_DropsOldest(t *testing.T) {
	q := newEventQueue()
	for i := 0; i < streamBuffer+2; i++ {
		q.push(streamEvent{Name: eventSnapshot, Data: i})
	}
	require.Len(t, q, streamBuffer)
	assert.Equal(t, 2, (<-q).Data)
}

func TestEventQueue_Snapshot(t *testing.T) {
	q := newEventQueue()
	q.snapshot(fiber.Map{"id": "c1"}, nil)
	q.snapshot(nil, errors.New("boom"))

	first := <-q
	assert.Equal(t, eventSnapshot, first.Name)
	second := <-q
	assert.Equal(t, eventStreamFailed, second.Name)
	assert.Equal(t, fiber.Map{"error": "boom"}, second.Data)
}

func TestWriteEvents(t *testing.T) {
	pr, pw := io.Pipe()
	q := newEventQueue()
	done := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- writeEvents(bufio.NewWriter(pw), q, done, time.Hour)
	}()

	q.snapshot(fiber.Map{"id": "c1"}, nil)

	r := bufio.NewReader(pr)
	for _, want := range []string{"event: snapshot\n", "data: {\"id\":\"c1\"}\n", "\n"} {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	close(done)
	assert.NoError(t, <-errCh)
}

func TestWriteEvents_Heartbeat(t *testing.T) {
	pr, pw := io.Pipe()
	done := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- writeEvents(bufio.NewWriter(pw), newEventQueue(), done, 10*time.Millisecond)
	}()

	line, err := bufio.NewReader(pr).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": ping\n", line)

	// Stop reading: the next heartbeat fails to flush and ends the stream.
	require.NoError(t, pr.Close())
	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("writer did not stop after the client went away")
	}
	close(done)
}
