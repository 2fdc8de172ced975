package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/tempmon/cmd/tempmon/console"
	"github.com/mklimuk/tempmon/comfort"
	"github.com/mklimuk/tempmon/display"
	"github.com/mklimuk/tempmon/poll"
	"github.com/mklimuk/tempmon/publish/mqtt"
)

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "poll the sensor until interrupted",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "poll interval"},
		&cli.BoolFlag{Name: "all", Usage: "print every reading, not only changes"},
		&cli.BoolFlag{Name: "timestamps", Aliases: []string{"t"}, Usage: "prefix readings with their time"},
		&cli.StringFlag{Name: "mqtt-server", Usage: "publish readings to this broker (tcp://host:port)"},
		&cli.StringFlag{Name: "mqtt-topic", Usage: "MQTT state topic"},
	}, sensorFlags...),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		if c.IsSet("mqtt-server") || c.IsSet("mqtt-topic") {
			if cfg.MQTT == nil {
				cfg.MQTT = &mqtt.Config{}
			}
			if c.IsSet("mqtt-server") {
				cfg.MQTT.Server = c.String("mqtt-server")
			}
			if c.IsSet("mqtt-topic") {
				cfg.MQTT.StateTopic = c.String("mqtt-topic")
			}
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSensor(ctx, c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() {
			if err := s.Close(); err != nil {
				slog.Warn("could not close sensor", "error", err)
			}
		}()

		var copts []display.ConsoleOption
		if c.Bool("timestamps") || cfg.Display.Timestamps {
			copts = append(copts, display.WithTimestamps())
		}
		sinks := []comfort.Sink{display.NewConsole(console.Writer(), cfg.DisplayOptions(), copts...)}
		if cfg.MQTT != nil {
			pub, err := mqtt.Connect(*cfg.MQTT)
			if err != nil {
				return console.Exit(1, "could not connect to broker: %s", console.Red(err))
			}
			defer func() { _ = pub.Close() }()
			sinks = append(sinks, pub)
		}
		sub := comfort.NewSubscriber(comfort.NewTracker(cfg.Comfort), sinks...)

		events := poll.NewChannel(16)
		loop := poll.New(s, cfg.PollOptions()...)
		loop.Subscribe(events)

		console.PInfof(console.PictoPin, "watching %s every %s", cfg.Sensor.Adapter, loop.Config().Interval)
		console.Printf("%s %s\n", console.PictoThermometer, display.Placeholder(cfg.DisplayOptions()))
		if err := loop.Start(ctx); err != nil {
			return console.Exit(1, "could not start polling: %s", console.Red(err))
		}
		go func() {
			<-loop.Done()
			events.Close()
		}()
		for ev := range events.Events() {
			sub.OnEvent(ctx, ev)
		}
		// the sensor is closed by the deferred call only after the worker exited
		loop.Stop()
		console.PInfof(console.PictoFinish, "stopped")
		return nil
	},
}
