// Package mcp9808 drives Microchip MCP9808 digital temperature sensors (and
// register compatible parts) over I2C.
// See: https://ww1.microchip.com/downloads/en/DeviceDoc/25095A.pdf
//
// Usage:
//
//	dev, err := mcp9808.Open(ctx, mcp9808.Address{Bus: 2, Device: 0x18}, i2c.Opener)
//	if err != nil { ... }
//	defer dev.Close()
//	t, err := dev.ReadTemperature(ctx)
package mcp9808

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/tempmon"
)

const DefaultAddress = 0x18
const DefaultBus = 2

var ErrUnexpectedDevice = errors.New("mcp9808: unexpected device identity")

type State int

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Address identifies one sensor: the bus number and its 7-bit device address.
type Address struct {
	Bus    int
	Device byte
}

func (a Address) String() string {
	return fmt.Sprintf("i2c-%d@0x%02x", a.Bus, a.Device)
}

type Config struct {
	// ConfigWord is written to the configuration register by Configure.
	// 0x0000 is continuous conversion with alerts disabled.
	ConfigWord uint16
}

type ConfigOption func(*Config)

func WithConfigWord(word uint16) ConfigOption {
	return func(c *Config) {
		c.ConfigWord = word
	}
}

// Device is a single MCP9808 sensor. It owns its bus handle from Open until
// Close. All register access is serialized by an internal mutex so the
// pointer write and the following read are never interleaved.
type Device struct {
	mx         sync.Mutex
	addr       Address
	opener     tempmon.BusOpener
	bus        tempmon.BusCloser
	state      State
	configured bool
	config     Config
}

// New returns an unopened device. Call Open before any register access.
func New(addr Address, opener tempmon.BusOpener, opts ...ConfigOption) *Device {
	config := Config{}
	for _, opt := range opts {
		opt(&config)
	}
	return &Device{addr: addr, opener: opener, config: config}
}

// Open builds a device and acquires its bus.
func Open(ctx context.Context, addr Address, opener tempmon.BusOpener, opts ...ConfigOption) (*Device, error) {
	d := New(addr, opener, opts...)
	if err := d.Open(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) Address() Address {
	return d.addr
}

func (d *Device) State() State {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.state
}

func (d *Device) Configured() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.configured
}

// Open acquires the bus. Opening an open device is a no-op; a closed device
// cannot be reopened.
func (d *Device) Open(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	switch d.state {
	case StateOpen:
		return nil
	case StateClosed:
		return fmt.Errorf("mcp9808: device %s already closed: %w", d.addr, tempmon.ErrNotOpen)
	}
	if d.opener == nil {
		return fmt.Errorf("mcp9808: no bus opener for %s: %w", d.addr, tempmon.ErrBusUnavailable)
	}
	bus, err := d.opener(ctx, d.addr.Bus)
	if err != nil {
		return fmt.Errorf("mcp9808: could not open bus %d: %w: %w", d.addr.Bus, tempmon.ErrBusUnavailable, err)
	}
	d.bus = bus
	d.state = StateOpen
	slog.Debug("mcp9808 opened", "address", d.addr.String())
	return nil
}

// Configure writes the configuration word after the config register pointer
// in a single transaction.
func (d *Device) Configure(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	err := d.writeRegister(ctx, regConfig, byte(d.config.ConfigWord>>8), byte(d.config.ConfigWord))
	if err != nil {
		return err
	}
	d.configured = true
	return nil
}

// ReadTemperature selects the ambient register and decodes its 2 byte value.
// Configuration is not required beforehand.
func (d *Device) ReadTemperature(ctx context.Context) (tempmon.Temperature, error) {
	raw, err := d.ReadRaw(ctx)
	if err != nil {
		return 0, err
	}
	return raw.Temperature(), nil
}

// ReadRaw returns the ambient register word including the alert flag bits.
func (d *Device) ReadRaw(ctx context.Context) (RawValue, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	resp, err := d.readRegister(ctx, regAmbient, 2)
	if err != nil {
		return 0, err
	}
	return ParseRaw(resp)
}

// Check reads the identification registers and verifies the part is an MCP9808.
func (d *Device) Check(ctx context.Context) (Identity, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var id Identity
	if err := d.checkOpen(); err != nil {
		return id, err
	}
	resp, err := d.readRegister(ctx, regManufacturer, 2)
	if err != nil {
		return id, err
	}
	id.Manufacturer = uint16(resp[0])<<8 | uint16(resp[1])
	resp, err = d.readRegister(ctx, regDevice, 2)
	if err != nil {
		return id, err
	}
	id.Device = resp[0]
	id.Revision = resp[1]
	if id.Manufacturer != ManufacturerID || id.Device != DeviceID {
		return id, fmt.Errorf("%w: manufacturer 0x%04x, device 0x%02x", ErrUnexpectedDevice, id.Manufacturer, id.Device)
	}
	return id, nil
}

// ReadConfig returns the current configuration register word.
func (d *Device) ReadConfig(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.readConfig(ctx)
}

// SetResolution changes the conversion resolution (and conversion time).
func (d *Device) SetResolution(ctx context.Context, res Resolution) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	return d.writeRegister(ctx, regResolution, byte(res)&0x03)
}

// Shutdown puts the sensor into low-power shutdown mode. Conversions stop and
// the ambient register keeps its last value until Wake.
func (d *Device) Shutdown(ctx context.Context) error {
	return d.updateConfig(ctx, func(word uint16) uint16 { return word | ConfigShutdown })
}

// Wake resumes continuous conversion.
func (d *Device) Wake(ctx context.Context) error {
	return d.updateConfig(ctx, func(word uint16) uint16 { return word &^ ConfigShutdown })
}

// Close releases the bus. It is safe to call on a device that was never
// opened and to call more than once.
func (d *Device) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.state == StateClosed {
		return nil
	}
	bus := d.bus
	d.bus = nil
	d.state = StateClosed
	if bus == nil {
		return nil
	}
	if err := bus.Close(); err != nil {
		return fmt.Errorf("mcp9808: could not close bus: %w", err)
	}
	slog.Debug("mcp9808 closed", "address", d.addr.String())
	return nil
}

func (d *Device) updateConfig(ctx context.Context, update func(uint16) uint16) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	word, err := d.readConfig(ctx)
	if err != nil {
		return err
	}
	word = update(word)
	return d.writeRegister(ctx, regConfig, byte(word>>8), byte(word))
}

func (d *Device) readConfig(ctx context.Context) (uint16, error) {
	resp, err := d.readRegister(ctx, regConfig, 2)
	if err != nil {
		return 0, err
	}
	return uint16(resp[0])<<8 | uint16(resp[1]), nil
}

func (d *Device) checkOpen() error {
	if d.state != StateOpen {
		return fmt.Errorf("mcp9808: device %s is %s: %w", d.addr, d.state, tempmon.ErrNotOpen)
	}
	return nil
}

func (d *Device) writeRegister(ctx context.Context, reg byte, data ...byte) error {
	buf := append([]byte{reg}, data...)
	err := d.bus.WriteToAddr(ctx, d.addr.Device, buf)
	if err != nil {
		return fmt.Errorf("mcp9808: could not write register 0x%02x: %w: %w", reg, tempmon.ErrIO, err)
	}
	return nil
}

func (d *Device) readRegister(ctx context.Context, reg byte, size int) ([]byte, error) {
	err := d.bus.WriteToAddr(ctx, d.addr.Device, []byte{reg})
	if err != nil {
		return nil, fmt.Errorf("mcp9808: could not write register pointer 0x%02x: %w: %w", reg, tempmon.ErrIO, err)
	}
	resp := make([]byte, size)
	err = d.bus.ReadFromAddr(ctx, d.addr.Device, resp)
	if err != nil {
		return nil, fmt.Errorf("mcp9808: could not read register 0x%02x: %w: %w", reg, tempmon.ErrIO, err)
	}
	return resp, nil
}
