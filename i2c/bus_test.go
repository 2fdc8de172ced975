package i2c

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/mklimuk/tempmon"
	"github.com/mklimuk/tempmon/mcp9808"
)

func TestGenericBus_ReadTemperature(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x18, W: []byte{0x01, 0x00, 0x00}},
			{Addr: 0x18, W: []byte{0x05}},
			{Addr: 0x18, R: []byte{0x01, 0x50}},
			{Addr: 0x18, W: []byte{0x05}},
			{Addr: 0x18, R: []byte{0x11, 0x50}},
		},
		DontPanic: true,
	}
	opener := func(ctx context.Context, bus int) (tempmon.BusCloser, error) {
		return NewBus(playback), nil
	}
	ctx := context.Background()
	dev, err := mcp9808.Open(ctx, mcp9808.Address{Bus: 2, Device: mcp9808.DefaultAddress}, opener)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx))

	temp, err := dev.ReadTemperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21.0, temp.Celsius())

	temp, err = dev.ReadTemperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, -235.0, temp.Celsius())

	// Close fails unless every expected transaction was consumed
	require.NoError(t, dev.Close())
}

func TestGenericBus_Errors(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x18, W: []byte{0x05}}},
		DontPanic: true,
	}
	bus := NewBus(playback)
	ctx := context.Background()

	err := bus.WriteToAddr(ctx, 0x19, []byte{0x05})
	assert.ErrorContains(t, err, "could not write to i2c address 0x19")

	require.NoError(t, bus.WriteToAddr(ctx, 0x18, []byte{0x05}))
	err = bus.ReadFromAddr(ctx, 0x18, make([]byte, 2))
	assert.ErrorContains(t, err, "could not read from i2c address 0x18")

	assert.NoError(t, bus.Release(ctx))
	assert.NoError(t, bus.Close())
}
