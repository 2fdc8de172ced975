package poll

import (
	"context"
	"sync"
	"time"

	"github.com/mklimuk/tempmon"
)

// Event is a single loop notification. Err is nil for readings.
type Event struct {
	Time        time.Time
	Temperature tempmon.Temperature
	Kind        tempmon.ErrorKind
	Err         error
}

// Channel is a Subscriber that forwards notifications to a buffered channel
// so they can be consumed on another goroutine.
type Channel struct {
	mx     sync.Mutex
	events chan Event
	closed bool
}

func NewChannel(size int) *Channel {
	if size < 0 {
		size = 0
	}
	return &Channel{events: make(chan Event, size)}
}

func (c *Channel) Events() <-chan Event {
	return c.events
}

func (c *Channel) OnTemperature(ctx context.Context, t tempmon.Temperature) {
	c.send(ctx, Event{Time: time.Now(), Temperature: t})
}

func (c *Channel) OnError(ctx context.Context, kind tempmon.ErrorKind, err error) {
	c.send(ctx, Event{Time: time.Now(), Kind: kind, Err: err})
}

// send blocks until the event is buffered or ctx is cancelled.
func (c *Channel) send(ctx context.Context, ev Event) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// Close closes the events channel. Call it after the loop has been stopped.
func (c *Channel) Close() {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
