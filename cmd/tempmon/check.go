package main

import (
	"errors"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/tempmon/cmd/tempmon/console"
	"github.com/mklimuk/tempmon/mcp9808"
)

type checkReport struct {
	Address    string           `yaml:"address"`
	Identity   mcp9808.Identity `yaml:"identity"`
	Genuine    bool             `yaml:"genuine"`
	ConfigWord string           `yaml:"config_word"`
	Shutdown   bool             `yaml:"shutdown"`
	Flags      mcp9808.Flags    `yaml:"flags"`
	Reading    string           `yaml:"reading"`
}

var checkCmd = cli.Command{
	Name:  "check",
	Usage: "verify the sensor identity and print its state",
	Flags: sensorFlags,
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		dev, err := openDevice(c.Context, c, cfg, false)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer dev.Close()

		report := checkReport{Address: dev.Address().String()}
		report.Identity, err = dev.Check(c.Context)
		switch {
		case errors.Is(err, mcp9808.ErrUnexpectedDevice):
			console.Warnf("%s", err)
		case err != nil:
			return console.Exit(1, "identity read error: %s", console.Red(err))
		default:
			report.Genuine = true
		}
		word, err := dev.ReadConfig(c.Context)
		if err != nil {
			return console.Exit(1, "config read error: %s", console.Red(err))
		}
		report.ConfigWord = formatWord(word)
		report.Shutdown = word&mcp9808.ConfigShutdown != 0
		raw, err := dev.ReadRaw(c.Context)
		if err != nil {
			return console.Exit(1, "temperature read error: %s", console.Red(err))
		}
		report.Flags = raw.Flags()
		report.Reading = raw.Temperature().String()

		enc := yaml.NewEncoder(console.Writer())
		defer enc.Close()
		if err := enc.Encode(report); err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
