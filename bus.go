package tempmon

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// BusCloser is an I2CBus whose underlying handle is owned by the caller.
type BusCloser interface {
	I2CBus
	Close() error
}

// BusOpener acquires a bus handle for the given bus number (e.g. 2 for /dev/i2c-2).
type BusOpener func(ctx context.Context, bus int) (BusCloser, error)
