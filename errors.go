package tempmon

import (
	"errors"
	"fmt"
)

var (
	ErrBusUnavailable = errors.New("i2c bus unavailable")
	ErrNotOpen        = errors.New("device not open")
	ErrIO             = errors.New("i2c transfer failed")
	// ErrDecode wraps ErrIO so that decode failures propagate as I/O failures.
	ErrDecode = fmt.Errorf("%w: malformed register value", ErrIO)
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindBusUnavailable
	KindNotOpen
	KindIO
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindBusUnavailable:
		return "bus_unavailable"
	case KindNotOpen:
		return "not_open"
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// KindOf classifies err. ErrDecode is checked before ErrIO since it wraps it.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrNotOpen):
		return KindNotOpen
	case errors.Is(err, ErrBusUnavailable):
		return KindBusUnavailable
	default:
		return KindUnknown
	}
}
