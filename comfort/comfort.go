// Package comfort classifies temperatures into HVAC modes using a hysteresis
// band, so a reading hovering around an entry threshold does not flip the
// mode on every sample.
package comfort

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/poll"
)

type Mode int

const (
	Neutral Mode = iota
	Cool
	Heat
)

func (m Mode) String() string {
	switch m {
	case Neutral:
		return "neutral"
	case Cool:
		return "cool"
	case Heat:
		return "heat"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var ErrInvalidBand = errors.New("comfort: invalid band")

// Band holds the entry and exit thresholds in degrees Celsius. All
// comparisons are strict.
type Band struct {
	CoolAbove     float64 `yaml:"cool_above"`
	HeatBelow     float64 `yaml:"heat_below"`
	CoolExitBelow float64 `yaml:"cool_exit_below"`
	HeatExitAbove float64 `yaml:"heat_exit_above"`
}

func DefaultBand() Band {
	return Band{
		CoolAbove:     28.4,
		HeatBelow:     23.5,
		CoolExitBelow: 26.0,
		HeatExitAbove: 25.0,
	}
}

// Validate checks that exit thresholds sit inside the entry thresholds and
// that the two deadbands do not overlap.
func (b Band) Validate() error {
	if !(b.HeatBelow < b.HeatExitAbove) {
		return fmt.Errorf("%w: heat_below %.2f must be lower than heat_exit_above %.2f", ErrInvalidBand, b.HeatBelow, b.HeatExitAbove)
	}
	if !(b.HeatExitAbove <= b.CoolExitBelow) {
		return fmt.Errorf("%w: heat_exit_above %.2f must not exceed cool_exit_below %.2f", ErrInvalidBand, b.HeatExitAbove, b.CoolExitBelow)
	}
	if !(b.CoolExitBelow < b.CoolAbove) {
		return fmt.Errorf("%w: cool_exit_below %.2f must be lower than cool_above %.2f", ErrInvalidBand, b.CoolExitBelow, b.CoolAbove)
	}
	return nil
}

// Tracker is the hysteresis state machine. It starts in Neutral.
type Tracker struct {
	mx   sync.Mutex
	band Band
	mode Mode
}

func NewTracker(band Band) *Tracker {
	return &Tracker{band: band}
}

func (t *Tracker) Band() Band {
	return t.band
}

func (t *Tracker) Mode() Mode {
	t.mx.Lock()
	defer t.mx.Unlock()
	return t.mode
}

// Update feeds a reading and returns the resulting mode.
func (t *Tracker) Update(temp tempmon.Temperature) Mode {
	t.mx.Lock()
	defer t.mx.Unlock()
	c := temp.Celsius()
	switch t.mode {
	case Neutral:
		if c > t.band.CoolAbove {
			t.mode = Cool
		} else if c < t.band.HeatBelow {
			t.mode = Heat
		}
	case Cool:
		if c < t.band.CoolExitBelow {
			t.mode = Neutral
		}
	case Heat:
		if c > t.band.HeatExitAbove {
			t.mode = Neutral
		}
	}
	return t.mode
}

type Reading struct {
	Time        time.Time
	Temperature tempmon.Temperature
	Mode        Mode
}

// Sink presents classified readings, e.g. on a console or over MQTT.
type Sink interface {
	OnReading(ctx context.Context, r Reading)
	OnError(ctx context.Context, kind tempmon.ErrorKind, err error)
}

// Subscriber feeds loop readings through a Tracker and fans the result out to sinks.
type Subscriber struct {
	tracker *Tracker
	sinks   []Sink
	now     func() time.Time
}

var _ poll.Subscriber = (*Subscriber)(nil)

func NewSubscriber(tracker *Tracker, sinks ...Sink) *Subscriber {
	return &Subscriber{tracker: tracker, sinks: sinks, now: time.Now}
}

func (s *Subscriber) OnTemperature(ctx context.Context, t tempmon.Temperature) {
	r := Reading{Time: s.now(), Temperature: t, Mode: s.tracker.Update(t)}
	for _, sink := range s.sinks {
		sink.OnReading(ctx, r)
	}
}

func (s *Subscriber) OnError(ctx context.Context, kind tempmon.ErrorKind, err error) {
	for _, sink := range s.sinks {
		sink.OnError(ctx, kind, err)
	}
}

// OnEvent dispatches an event received through a poll.Channel, keeping the
// time the reading was taken.
func (s *Subscriber) OnEvent(ctx context.Context, ev poll.Event) {
	if ev.Err != nil {
		s.OnError(ctx, ev.Kind, ev.Err)
		return
	}
	r := Reading{Time: ev.Time, Temperature: ev.Temperature, Mode: s.tracker.Update(ev.Temperature)}
	for _, sink := range s.sinks {
		sink.OnReading(ctx, r)
	}
}
