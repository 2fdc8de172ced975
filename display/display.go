// Package display renders temperatures as text and provides a console sink
// for comfort readings.
package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/comfort"
)

type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// ParseUnit accepts "C", "F" and their lower case or long forms.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "", "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("display: unknown unit %q", s)
	}
}

const placeholder = "--.-"

type Options struct {
	Unit Unit
	// ShowUnit appends the degree prefixed unit, e.g. "°C".
	ShowUnit bool
}

func DefaultOptions() Options {
	return Options{Unit: Celsius, ShowUnit: true}
}

func (o Options) suffix() string {
	if !o.ShowUnit {
		return ""
	}
	if o.Unit == "" {
		return "°" + string(Celsius)
	}
	return "°" + string(o.Unit)
}

// Format renders t with one decimal place.
func Format(t tempmon.Temperature, opts Options) string {
	v := t.Celsius()
	if opts.Unit == Fahrenheit {
		v = t.Fahrenheit()
	}
	return fmt.Sprintf("%0.1f%s", v, opts.suffix())
}

// Placeholder is shown while no reading is available.
func Placeholder(opts Options) string {
	return placeholder + opts.suffix()
}

const (
	PictoThermometer = "🌡"
	PictoCool        = "❄"
	PictoHeat        = "🔥"
	PictoStop        = "🚫"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	white  = color.New(color.FgHiWhite).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// Console writes one line per reading, colored by comfort mode.
type Console struct {
	mx         sync.Mutex
	out        io.Writer
	opts       Options
	timestamps bool
}

var _ comfort.Sink = (*Console)(nil)

type ConsoleOption func(*Console)

// WithTimestamps prefixes every line with the reading time.
func WithTimestamps() ConsoleOption {
	return func(c *Console) {
		c.timestamps = true
	}
}

func NewConsole(out io.Writer, opts Options, copts ...ConsoleOption) *Console {
	c := &Console{out: out, opts: opts}
	for _, o := range copts {
		o(c)
	}
	return c
}

func (c *Console) OnReading(ctx context.Context, r comfort.Reading) {
	value := Format(r.Temperature, c.opts)
	var line string
	switch r.Mode {
	case comfort.Cool:
		line = fmt.Sprintf("%s %s %s", PictoCool, blue(value), r.Mode)
	case comfort.Heat:
		line = fmt.Sprintf("%s %s %s", PictoHeat, yellow(value), r.Mode)
	default:
		line = fmt.Sprintf("%s %s %s", PictoThermometer, white(value), r.Mode)
	}
	c.writeLine(r.Time, line)
}

func (c *Console) OnError(ctx context.Context, kind tempmon.ErrorKind, err error) {
	c.writeLine(time.Now(), fmt.Sprintf("%s %s %s", PictoStop, red(Placeholder(c.opts)), kind))
}

func (c *Console) writeLine(ts time.Time, line string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.timestamps {
		_, _ = fmt.Fprintf(c.out, "%s %s\n", ts.Format(time.DateTime), line)
		return
	}
	_, _ = fmt.Fprintln(c.out, line)
}
