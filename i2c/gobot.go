package i2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gobotI2C "gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"gobot.io/x/gobot/v2/platforms/raspi"

	"github.com/mklimuk/tempmon"
)

var _ tempmon.BusCloser = &GobotBus{}

// GobotAdaptor is a gobot platform adaptor exposing I2C connections, such as
// nanopi.Adaptor or raspi.Adaptor.
type GobotAdaptor interface {
	gobotI2C.Connector
	Connect() error
	Finalize() error
}

func NanoPiAdaptor() GobotAdaptor {
	return nanopi.NewNeoAdaptor()
}

func RaspiAdaptor() GobotAdaptor {
	return raspi.NewAdaptor()
}

// GobotBus opens one gobot connection per device address and keeps it until Close.
type GobotBus struct {
	mx      sync.Mutex
	adaptor GobotAdaptor
	bus     int
	conns   map[byte]gobotI2C.Connection
}

func NewGobotBus(adaptor GobotAdaptor, bus int) *GobotBus {
	return &GobotBus{adaptor: adaptor, bus: bus, conns: make(map[byte]gobotI2C.Connection)}
}

// GobotOpener connects the adaptor and returns a bus bound to it. Closing the
// bus finalizes the adaptor.
func GobotOpener(adaptor GobotAdaptor) tempmon.BusOpener {
	return func(ctx context.Context, bus int) (tempmon.BusCloser, error) {
		if err := adaptor.Connect(); err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		return NewGobotBus(adaptor, bus), nil
	}
}

func (b *GobotBus) connection(address byte) (gobotI2C.Connection, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.adaptor.GetI2cConnection(int(address), b.bus)
	if err != nil {
		return nil, fmt.Errorf("could not get i2c connection for 0x%02x on bus %d: %w", address, b.bus, err)
	}
	slog.Debug("gobot i2c connection opened", "bus", b.bus, "address", fmt.Sprintf("0x%02x", address))
	b.conns[address] = conn
	return conn, nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c address 0x%02x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c address 0x%02x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c address 0x%02x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c address 0x%02x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close connection 0x%02x: %w", addr, err))
		}
		delete(b.conns, addr)
	}
	if err := b.adaptor.Finalize(); err != nil {
		errs = append(errs, fmt.Errorf("adaptor finalize error: %w", err))
	}
	return errors.Join(errs...)
}
