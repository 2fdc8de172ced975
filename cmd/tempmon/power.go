package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/tempmon/cmd/tempmon/console"
	"github.com/mklimuk/tempmon/mcp9808"
)

var powerCmd = cli.Command{
	Name:  "power",
	Usage: "switch the sensor between low-power shutdown and continuous conversion",
	Subcommands: cli.Commands{
		&powerShutdownCmd,
		&powerWakeCmd,
	},
}

var powerShutdownCmd = cli.Command{
	Name:  "shutdown",
	Usage: "stop conversions",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	}, sensorFlags...),
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			ok, err := console.Confirm("the sensor will keep reporting its last reading until woken up, continue?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if !ok {
				return nil
			}
		}
		return withDevice(c, func(ctx context.Context, dev *mcp9808.Device) error {
			if err := dev.Shutdown(ctx); err != nil {
				return err
			}
			console.PInfof(console.PictoSleep, "%s is in shutdown mode", dev.Address())
			return nil
		})
	},
}

var powerWakeCmd = cli.Command{
	Name:  "wake",
	Usage: "resume continuous conversion",
	Flags: sensorFlags,
	Action: func(c *cli.Context) error {
		return withDevice(c, func(ctx context.Context, dev *mcp9808.Device) error {
			if err := dev.Wake(ctx); err != nil {
				return err
			}
			console.PInfof(console.PictoThermometer, "%s is converting", dev.Address())
			return nil
		})
	},
}

func withDevice(c *cli.Context, action func(ctx context.Context, dev *mcp9808.Device) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return console.Exit(1, "configuration error: %s", console.Red(err))
	}
	dev, err := openDevice(c.Context, c, cfg, false)
	if err != nil {
		return console.Exit(1, "could not open sensor: %s", console.Red(err))
	}
	defer dev.Close()
	if err := action(c.Context, dev); err != nil {
		return console.Exit(1, "%s", console.Red(err))
	}
	return nil
}

func formatWord(word uint16) string {
	return fmt.Sprintf("0x%04x", word)
}
