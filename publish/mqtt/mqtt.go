// Package mqtt publishes comfort readings to an MQTT broker, optionally
// announcing the sensor through Home Assistant discovery.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/comfort"
)

const (
	DefaultServer     = "tcp://localhost:1883"
	DefaultClientID   = "tempmon"
	DefaultStateTopic = "tempmon/temperature"

	errorTopicSuffix = "/error"
	quiesceMillis    = 250

	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	unitCelsius            = "°C"
	deviceClassTemperature = "temperature"
	stateClassMeasurement  = "measurement"
	valueTemplateTemp      = "{{ value_json.temperature }}"
)

var ErrNotConnected = errors.New("mqtt: client not connected")

type Config struct {
	Server         string `yaml:"server"`
	ClientID       string `yaml:"client_id"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	StateTopic     string `yaml:"state_topic"`
	DiscoveryTopic string `yaml:"discovery_topic"`
	DiscoveryName  string `yaml:"discovery_name"`
	UniqueID       string `yaml:"unique_id"`
	QoS            byte   `yaml:"qos"`
	Retain         bool   `yaml:"retain"`
}

func (c Config) withDefaults() Config {
	if c.Server == "" {
		c.Server = DefaultServer
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.StateTopic == "" {
		c.StateTopic = DefaultStateTopic
	}
	return c
}

// client is the subset of paho.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher is a comfort.Sink sending one JSON message per reading.
type Publisher struct {
	client client
	cfg    Config
}

var _ comfort.Sink = (*Publisher)(nil)

// Connect dials the broker and publishes the discovery payload when a
// discovery topic is configured.
func Connect(cfg Config) (*Publisher, error) {
	cfg = cfg.withDefaults()
	opts := paho.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	c := paho.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: could not connect to %s: %w", cfg.Server, token.Error())
	}
	slog.Debug("mqtt connected", "server", cfg.Server, "clientID", cfg.ClientID)
	return newPublisher(c, cfg)
}

func newPublisher(c client, cfg Config) (*Publisher, error) {
	p := &Publisher{client: c, cfg: cfg.withDefaults()}
	if p.cfg.DiscoveryTopic != "" {
		if err := p.publishJSON(p.cfg.DiscoveryTopic, true, p.discoveryPayload()); err != nil {
			return nil, fmt.Errorf("mqtt: could not publish discovery: %w", err)
		}
	}
	return p, nil
}

func (p *Publisher) StateTopic() string {
	return p.cfg.StateTopic
}

func (p *Publisher) ErrorTopic() string {
	return p.cfg.StateTopic + errorTopicSuffix
}

type statePayload struct {
	Temperature float64 `json:"temperature"`
	Mode        string  `json:"mode"`
	Timestamp   string  `json:"timestamp"`
}

type errorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (p *Publisher) OnReading(ctx context.Context, r comfort.Reading) {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	payload := statePayload{
		Temperature: r.Temperature.Celsius(),
		Mode:        r.Mode.String(),
		Timestamp:   ts.UTC().Format(time.RFC3339),
	}
	if err := p.publishJSON(p.cfg.StateTopic, p.cfg.Retain, payload); err != nil {
		slog.Warn("mqtt publish failed", "topic", p.cfg.StateTopic, "error", err)
	}
}

func (p *Publisher) OnError(ctx context.Context, kind tempmon.ErrorKind, err error) {
	payload := errorPayload{Kind: kind.String()}
	if err != nil {
		payload.Error = err.Error()
	}
	if err := p.publishJSON(p.ErrorTopic(), false, payload); err != nil {
		slog.Warn("mqtt publish failed", "topic", p.ErrorTopic(), "error", err)
	}
}

func (p *Publisher) Close() error {
	if p.client == nil {
		return ErrNotConnected
	}
	p.client.Disconnect(quiesceMillis)
	p.client = nil
	return nil
}

func (p *Publisher) discoveryPayload() map[string]interface{} {
	name := p.cfg.DiscoveryName
	if name == "" {
		name = fmt.Sprintf("MCP9808 %s", p.cfg.ClientID)
	}
	uid := p.cfg.UniqueID
	if uid == "" {
		uid = p.cfg.ClientID
	}
	return map[string]interface{}{
		keyName:                name,
		keyStateTopic:          p.cfg.StateTopic,
		keyUnitOfMeasurement:   unitCelsius,
		keyDeviceClass:         deviceClassTemperature,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       valueTemplateTemp,
		keyJSONAttributesTopic: p.cfg.StateTopic,
		keyUniqueID:            uid,
	}
}

func (p *Publisher) publishJSON(topic string, retained bool, payload interface{}) error {
	if p.client == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, p.cfg.QoS, retained, b)
	token.Wait()
	return token.Error()
}
