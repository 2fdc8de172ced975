package mcp9808

import (
	"encoding/binary"
	"fmt"

	"github.com/mklimuk/tempmon"
)

// Register pointers (datasheet table 5-1)
const (
	regConfig       byte = 0x01
	regAmbient      byte = 0x05
	regManufacturer byte = 0x06
	regDevice       byte = 0x07
	regResolution   byte = 0x08
)

const (
	ManufacturerID = 0x0054
	DeviceID       = 0x04
)

// configuration register bits
const (
	ConfigShutdown uint16 = 0x0100
)

// ambient register layout
const (
	ambientFraction = 0x0FFF
	ambientSign     = 0x1000
	flagLower       = 0x2000
	flagUpper       = 0x4000
	flagCritical    = 0x8000
)

// RawValue is the unmodified 16-bit word of the ambient temperature register.
type RawValue uint16

// ParseRaw builds a RawValue from a big-endian register read. Anything other
// than exactly two bytes is rejected.
func ParseRaw(buf []byte) (RawValue, error) {
	if len(buf) != 2 {
		return 0, fmt.Errorf("mcp9808: expected 2 bytes, got %d: %w", len(buf), tempmon.ErrDecode)
	}
	return RawValue(binary.BigEndian.Uint16(buf)), nil
}

// Temperature decodes the lower 13 bits: 12 bits of sixteenths plus the sign
// bit, which subtracts 256 °C. Flag bits 13-15 are ignored.
func (r RawValue) Temperature() tempmon.Temperature {
	t := tempmon.Temperature(r & ambientFraction)
	if r&ambientSign != 0 {
		t -= 256 * 16
	}
	return t
}

// Flags reports the alert comparator bits latched in the upper 3 bits.
func (r RawValue) Flags() Flags {
	return Flags{
		Critical: r&flagCritical != 0,
		Upper:    r&flagUpper != 0,
		Lower:    r&flagLower != 0,
	}
}

type Flags struct {
	Critical bool `yaml:"critical"`
	Upper    bool `yaml:"upper"`
	Lower    bool `yaml:"lower"`
}

// Decode converts a raw 2 byte ambient register read into a temperature.
func Decode(buf []byte) (tempmon.Temperature, error) {
	raw, err := ParseRaw(buf)
	if err != nil {
		return 0, err
	}
	return raw.Temperature(), nil
}

type Resolution byte

const (
	ResolutionHalf      Resolution = 0x00 // 0.5 °C, 30 ms conversion
	ResolutionQuarter   Resolution = 0x01 // 0.25 °C, 65 ms
	ResolutionEighth    Resolution = 0x02 // 0.125 °C, 130 ms
	ResolutionSixteenth Resolution = 0x03 // 0.0625 °C, 250 ms (power-up default)
)

func (r Resolution) String() string {
	switch r {
	case ResolutionHalf:
		return "half"
	case ResolutionQuarter:
		return "quarter"
	case ResolutionEighth:
		return "eighth"
	case ResolutionSixteenth:
		return "sixteenth"
	default:
		return fmt.Sprintf("Resolution(%d)", byte(r))
	}
}

// ParseResolution accepts the names returned by Resolution.String.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "half":
		return ResolutionHalf, nil
	case "quarter":
		return ResolutionQuarter, nil
	case "eighth":
		return ResolutionEighth, nil
	case "sixteenth", "":
		return ResolutionSixteenth, nil
	default:
		return 0, fmt.Errorf("mcp9808: unknown resolution %q", s)
	}
}

// Identity holds the contents of the manufacturer and device ID registers.
type Identity struct {
	Manufacturer uint16 `yaml:"manufacturer"`
	Device       byte   `yaml:"device"`
	Revision     byte   `yaml:"revision"`
}
