package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/cmd/tempmon/console"
	"github.com/mklimuk/tempmon/config"
	"github.com/mklimuk/tempmon/display"
)

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"temp"},
	Usage:   "read the temperature once",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "raw", Usage: "also print the raw register word and alert flags"},
	}, sensorFlags...),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		opts := cfg.DisplayOptions()
		if c.Bool("raw") && cfg.Sensor.Adapter != config.AdapterMock {
			dev, err := openDevice(c.Context, c, cfg, true)
			if err != nil {
				return console.Exit(1, "could not open sensor: %s", console.Red(err))
			}
			defer dev.Close()
			raw, err := dev.ReadRaw(c.Context)
			if err != nil {
				return console.Exit(1, "error getting temperature read (%s): %s", tempmon.KindOf(err), console.Red(err))
			}
			flags := raw.Flags()
			console.Printf("%s %s (0x%04x critical=%t upper=%t lower=%t)\n", console.PictoThermometer,
				console.White(display.Format(raw.Temperature(), opts)), uint16(raw), flags.Critical, flags.Upper, flags.Lower)
			return nil
		}
		s, err := openSensor(c.Context, c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer s.Close()
		temp, err := s.ReadTemperature(c.Context)
		if err != nil {
			return console.Exit(1, "error getting temperature read (%s): %s", tempmon.KindOf(err), console.Red(err))
		}
		console.Printf("%s %s\n", console.PictoThermometer, console.White(display.Format(temp, opts)))
		return nil
	},
}
