// Package config holds the tempmon runtime configuration and build metadata.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/tempmon/comfort"
	"github.com/mklimuk/tempmon/display"
	"github.com/mklimuk/tempmon/mcp9808"
	"github.com/mklimuk/tempmon/poll"
	"github.com/mklimuk/tempmon/publish/mqtt"
)

// set at build time
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	AdapterPeriph  = "periph"
	AdapterNanoPi  = "nanopi"
	AdapterRaspi   = "raspi"
	AdapterMCP2221 = "mcp2221"
	AdapterMock    = "mock"
)

var Adapters = []string{AdapterPeriph, AdapterNanoPi, AdapterRaspi, AdapterMCP2221, AdapterMock}

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Sensor  Sensor       `yaml:"sensor"`
	Poll    Poll         `yaml:"poll"`
	Comfort comfort.Band `yaml:"comfort"`
	Display Display      `yaml:"display"`
	MQTT    *mqtt.Config `yaml:"mqtt,omitempty"`
}

type Sensor struct {
	Adapter    string `yaml:"adapter"`
	Bus        int    `yaml:"bus"`
	Address    uint8  `yaml:"address"`
	Resolution string `yaml:"resolution"`
	ConfigWord uint16 `yaml:"config_word"`
}

type Poll struct {
	Interval   time.Duration `yaml:"interval"`
	ChangeOnly bool          `yaml:"change_only"`
}

type Display struct {
	Unit       string `yaml:"unit"`
	ShowUnit   bool   `yaml:"show_unit"`
	Timestamps bool   `yaml:"timestamps"`
}

func Default() Config {
	return Config{
		Sensor: Sensor{
			Adapter:    AdapterPeriph,
			Bus:        mcp9808.DefaultBus,
			Address:    mcp9808.DefaultAddress,
			Resolution: mcp9808.ResolutionSixteenth.String(),
		},
		Poll: Poll{
			Interval:   poll.DefaultInterval,
			ChangeOnly: true,
		},
		Comfort: comfort.DefaultBand(),
		Display: Display{
			Unit:     string(display.Celsius),
			ShowUnit: true,
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !slices.Contains(Adapters, c.Sensor.Adapter) {
		return fmt.Errorf("%w: unknown adapter %q (expected one of %v)", ErrInvalid, c.Sensor.Adapter, Adapters)
	}
	if c.Sensor.Bus < 0 {
		return fmt.Errorf("%w: negative bus number %d", ErrInvalid, c.Sensor.Bus)
	}
	// 7-bit addresses outside the reserved ranges
	if c.Sensor.Address < 0x08 || c.Sensor.Address > 0x77 {
		return fmt.Errorf("%w: i2c address 0x%02x out of range", ErrInvalid, c.Sensor.Address)
	}
	if _, err := mcp9808.ParseResolution(c.Sensor.Resolution); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %s", ErrInvalid, c.Poll.Interval)
	}
	if err := c.Comfort.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := display.ParseUnit(c.Display.Unit); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.MQTT != nil && c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt qos %d out of range", ErrInvalid, c.MQTT.QoS)
	}
	return nil
}

// DisplayOptions converts the display section. Call it on a validated config.
func (c Config) DisplayOptions() display.Options {
	unit, _ := display.ParseUnit(c.Display.Unit)
	return display.Options{Unit: unit, ShowUnit: c.Display.ShowUnit}
}

func (c Config) PollOptions() []poll.Option {
	return []poll.Option{poll.WithInterval(c.Poll.Interval), poll.WithChangeOnly(c.Poll.ChangeOnly)}
}
