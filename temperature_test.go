package tempmon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCelsius(t *testing.T) {
	tests := []struct {
		given    float64
		expected Temperature
	}{
		{21.0, 336},
		{-235.0, -3760},
		{20.1, 322},
		{0.03, 0},
		{0.04, 1},
		{300, MaxTemperature},
		{-300, MinTemperature},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.given), func(t *testing.T) {
			assert.Equal(t, test.expected, FromCelsius(test.given))
		})
	}
}

func TestTemperature_Conversions(t *testing.T) {
	temp := Temperature(336)
	assert.Equal(t, 21.0, temp.Celsius())
	assert.InDelta(t, 69.8, temp.Fahrenheit(), 1e-9)
	assert.Equal(t, 21.0, temp.Physic().Celsius())
	assert.Equal(t, "21.0°C", temp.String())
	assert.Equal(t, "-0.1°C", Temperature(-1).String())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorKind
	}{
		{nil, KindUnknown},
		{fmt.Errorf("whatever"), KindUnknown},
		{fmt.Errorf("open: %w", ErrBusUnavailable), KindBusUnavailable},
		{fmt.Errorf("read: %w", ErrNotOpen), KindNotOpen},
		{fmt.Errorf("read: %w: %w", ErrIO, fmt.Errorf("nack")), KindIO},
		{fmt.Errorf("parse: %w", ErrDecode), KindDecode},
	}
	for _, test := range tests {
		t.Run(test.expected.String(), func(t *testing.T) {
			assert.Equal(t, test.expected, KindOf(test.err))
		})
	}
	assert.ErrorIs(t, ErrDecode, ErrIO)
}
