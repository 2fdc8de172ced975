package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/adapter"
	"github.com/mklimuk/tempmon/config"
	"github.com/mklimuk/tempmon/i2c"
	"github.com/mklimuk/tempmon/mcp9808"
	"github.com/mklimuk/tempmon/poll"
)

var sensorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   fmt.Sprintf("bus adapter, one of %v", config.Adapters),
	},
	&cli.IntFlag{
		Name:    "bus",
		Aliases: []string{"b"},
		Usage:   "i2c bus number (/dev/i2c-N)",
	},
	&cli.UintFlag{
		Name:  "address",
		Usage: "sensor i2c address (e.g. 0x18)",
	},
	&cli.IntFlag{
		Name:  "usb-index",
		Usage: "MCP2221 index when several bridges are connected",
		Value: -1,
	},
}

// loadConfig reads the configuration file and applies command line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("adapter") {
		cfg.Sensor.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		cfg.Sensor.Bus = c.Int("bus")
	}
	if c.IsSet("address") {
		cfg.Sensor.Address = uint8(c.Uint("address"))
	}
	if c.IsSet("interval") {
		cfg.Poll.Interval = c.Duration("interval")
	}
	if c.IsSet("all") {
		cfg.Poll.ChangeOnly = !c.Bool("all")
	}
	return cfg, cfg.Validate()
}

func busOpener(c *cli.Context, cfg config.Sensor) (tempmon.BusOpener, error) {
	switch cfg.Adapter {
	case config.AdapterPeriph:
		return i2c.Opener, nil
	case config.AdapterNanoPi:
		return i2c.GobotOpener(i2c.NanoPiAdaptor()), nil
	case config.AdapterRaspi:
		return i2c.GobotOpener(i2c.RaspiAdaptor()), nil
	case config.AdapterMCP2221:
		return adapter.Opener(adapter.WithIndex(c.Int("usb-index"))), nil
	default:
		return nil, fmt.Errorf("adapter %q does not provide an i2c bus", cfg.Adapter)
	}
}

// openDevice opens the sensor described by cfg. With configure set it also
// writes the configuration word and resolution, which wakes a sensor in
// shutdown mode.
func openDevice(ctx context.Context, c *cli.Context, cfg config.Config, configure bool) (*mcp9808.Device, error) {
	opener, err := busOpener(c, cfg.Sensor)
	if err != nil {
		return nil, err
	}
	addr := mcp9808.Address{Bus: cfg.Sensor.Bus, Device: cfg.Sensor.Address}
	dev, err := mcp9808.Open(ctx, addr, opener, mcp9808.WithConfigWord(cfg.Sensor.ConfigWord))
	if err != nil {
		return nil, err
	}
	if !configure {
		return dev, nil
	}
	if err := dev.Configure(ctx); err != nil {
		_ = dev.Close()
		return nil, err
	}
	res, err := mcp9808.ParseResolution(cfg.Sensor.Resolution)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	if err := dev.SetResolution(ctx, res); err != nil {
		_ = dev.Close()
		return nil, err
	}
	slog.Debug("sensor ready", "address", addr.String(), "adapter", cfg.Sensor.Adapter, "resolution", res.String())
	return dev, nil
}

type sensor interface {
	poll.Sampler
	Close() error
}

// openSensor returns a hardware sensor or, for the mock adapter, a simulated one.
func openSensor(ctx context.Context, c *cli.Context, cfg config.Config) (sensor, error) {
	if cfg.Sensor.Adapter == config.AdapterMock {
		return mcp9808.NewMockSensor(drift(time.Now(), time.Minute)), nil
	}
	return openDevice(ctx, c, cfg, true)
}

// drift swings between 22 and 30 °C over period so every comfort mode shows up.
func drift(start time.Time, period time.Duration) mcp9808.TemperatureBehaviorFunc {
	return func(ctx context.Context) (tempmon.Temperature, error) {
		phase := 2 * math.Pi * float64(time.Since(start)) / float64(period)
		return tempmon.FromCelsius(26 + 4*math.Sin(phase)), nil
	}
}
