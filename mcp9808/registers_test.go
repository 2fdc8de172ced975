package mcp9808

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/tempmon"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		given    []byte
		expected float64
	}{
		{[]byte{0x01, 0x50}, 21.0},
		{[]byte{0x11, 0x50}, -235.0},
		{[]byte{0x00, 0x00}, 0.0},
		{[]byte{0x0F, 0xFF}, 255.9375},
		{[]byte{0x10, 0x00}, -256.0},
		{[]byte{0x1F, 0xFF}, -0.0625},
		{[]byte{0x01, 0x94}, 25.25},
		// alert flags are ignored
		{[]byte{0xE1, 0x50}, 21.0},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.given), func(t *testing.T) {
			temp, err := Decode(test.given)
			require.NoError(t, err)
			assert.Equal(t, test.expected, temp.Celsius())
		})
	}
}

func TestDecode_AllWords(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		raw := RawValue(w)
		got := raw.Temperature().Celsius()
		frac := float64(w&0x0FFF) / 16.0
		if w&0x1000 == 0 {
			if got != frac || got < 0 || got >= 256 {
				t.Fatalf("word 0x%04x: got %v, want %v in [0, 256)", w, got, frac)
			}
		} else {
			if got != frac-256.0 || got < -256 || got >= 0 {
				t.Fatalf("word 0x%04x: got %v, want %v in [-256, 0)", w, got, frac-256.0)
			}
		}
	}
}

func TestParseRaw_InvalidLength(t *testing.T) {
	for _, buf := range [][]byte{nil, {0x01}, {0x01, 0x50, 0x00}} {
		t.Run(hex.EncodeToString(buf), func(t *testing.T) {
			_, err := ParseRaw(buf)
			assert.ErrorIs(t, err, tempmon.ErrDecode)
			assert.ErrorIs(t, err, tempmon.ErrIO)
		})
	}
}

func TestRawValue_Flags(t *testing.T) {
	assert.Equal(t, Flags{}, RawValue(0x0150).Flags())
	assert.Equal(t, Flags{Critical: true}, RawValue(0x8150).Flags())
	assert.Equal(t, Flags{Upper: true}, RawValue(0x4150).Flags())
	assert.Equal(t, Flags{Lower: true}, RawValue(0x2150).Flags())
}

func TestParseResolution(t *testing.T) {
	for _, res := range []Resolution{ResolutionHalf, ResolutionQuarter, ResolutionEighth, ResolutionSixteenth} {
		t.Run(res.String(), func(t *testing.T) {
			got, err := ParseResolution(res.String())
			require.NoError(t, err)
			assert.Equal(t, res, got)
		})
	}
	_, err := ParseResolution("tenth")
	assert.Error(t, err)
}
