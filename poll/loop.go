// Package poll samples a temperature sensor on a fixed interval and notifies
// subscribers about new readings and read failures.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/tempmon"
)

const DefaultInterval = 250 * time.Millisecond

var (
	ErrRunning = errors.New("poll: loop already running")
	ErrStopped = errors.New("poll: loop already stopped")
)

// Sampler is anything that can produce a temperature reading.
// *mcp9808.Device and *mcp9808.MockSensor both satisfy it.
type Sampler interface {
	ReadTemperature(ctx context.Context) (tempmon.Temperature, error)
}

// Subscriber receives notifications from the loop worker. Calls are made on
// the worker goroutine in reading order; a slow subscriber delays the next read.
type Subscriber interface {
	OnTemperature(ctx context.Context, t tempmon.Temperature)
	OnError(ctx context.Context, kind tempmon.ErrorKind, err error)
}

// SubscriberFuncs adapts plain functions to Subscriber. Nil fields are skipped.
type SubscriberFuncs struct {
	Temperature func(ctx context.Context, t tempmon.Temperature)
	Error       func(ctx context.Context, kind tempmon.ErrorKind, err error)
}

func (f SubscriberFuncs) OnTemperature(ctx context.Context, t tempmon.Temperature) {
	if f.Temperature != nil {
		f.Temperature(ctx, t)
	}
}

func (f SubscriberFuncs) OnError(ctx context.Context, kind tempmon.ErrorKind, err error) {
	if f.Error != nil {
		f.Error(ctx, kind, err)
	}
}

type Config struct {
	Interval   time.Duration
	ChangeOnly bool
}

type Option func(*Config)

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Interval = d
		}
	}
}

// WithChangeOnly controls duplicate suppression. When enabled (the default)
// a reading equal to the previous one is not delivered.
func WithChangeOnly(changeOnly bool) Option {
	return func(c *Config) {
		c.ChangeOnly = changeOnly
	}
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Loop owns a single worker goroutine doing all sensor I/O.
type Loop struct {
	mx      sync.Mutex
	sampler Sampler
	config  Config
	subs    []Subscriber
	state   state
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(sampler Sampler, opts ...Option) *Loop {
	config := Config{Interval: DefaultInterval, ChangeOnly: true}
	for _, opt := range opts {
		opt(&config)
	}
	return &Loop{sampler: sampler, config: config, done: make(chan struct{})}
}

// Start builds a loop for sampler, subscribes sub and starts it.
func Start(ctx context.Context, sampler Sampler, sub Subscriber, opts ...Option) (*Loop, error) {
	l := New(sampler, opts...)
	if sub != nil {
		l.Subscribe(sub)
	}
	if err := l.Start(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loop) Config() Config {
	return l.config
}

// Subscribe adds a subscriber. It takes effect from the next tick when the
// loop is already running.
func (l *Loop) Subscribe(sub Subscriber) {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.subs = append(l.subs, sub)
}

// Start launches the worker. The first sample is taken immediately.
func (l *Loop) Start(ctx context.Context) error {
	l.mx.Lock()
	defer l.mx.Unlock()
	switch l.state {
	case stateRunning:
		return ErrRunning
	case stateStopped:
		return ErrStopped
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = stateRunning
	go l.run(ctx)
	return nil
}

// Stop cancels the worker and waits for it to exit. No notification is
// delivered once Stop has returned. Calling Stop more than once, or on a loop
// that was never started, is safe.
func (l *Loop) Stop() {
	l.mx.Lock()
	prev := l.state
	l.state = stateStopped
	cancel := l.cancel
	l.mx.Unlock()
	switch prev {
	case stateIdle:
		close(l.done)
	case stateRunning:
		cancel()
		<-l.done
	case stateStopped:
		<-l.done
	}
}

// Done is closed when the worker exits, either through Stop or because the
// parent context was cancelled.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	slog.Debug("poll loop started", "interval", l.config.Interval, "changeOnly", l.config.ChangeOnly)
	defer slog.Debug("poll loop stopped")

	var last tempmon.Temperature
	hasLast := false
	timer := time.NewTimer(l.config.Interval)
	defer timer.Stop()
	for {
		t, err := l.sampler.ReadTemperature(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.Warn("temperature read failed", "error", err)
			// forget the last value so the first good read after a failure is delivered
			hasLast = false
			kind := tempmon.KindOf(err)
			for _, sub := range l.subscribers() {
				sub.OnError(ctx, kind, err)
			}
		} else if !l.config.ChangeOnly || !hasLast || t != last {
			last = t
			hasLast = true
			for _, sub := range l.subscribers() {
				sub.OnTemperature(ctx, t)
			}
		}

		timer.Reset(l.config.Interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) subscribers() []Subscriber {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.subs
}
