//go:build integration

package i2c

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/tempmon/mcp9808"
)

// TEMPMON_I2C_BUS selects the bus carrying a real MCP9808 at 0x18 (default 2).
func TestIntegration_MCP9808(t *testing.T) {
	bus := mcp9808.DefaultBus
	if v := os.Getenv("TEMPMON_I2C_BUS"); v != "" {
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		bus = n
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dev, err := mcp9808.Open(ctx, mcp9808.Address{Bus: bus, Device: mcp9808.DefaultAddress}, Opener)
	require.NoError(t, err)
	defer dev.Close()

	id, err := dev.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(mcp9808.ManufacturerID), id.Manufacturer)

	require.NoError(t, dev.Configure(ctx))
	temp, err := dev.ReadTemperature(ctx)
	require.NoError(t, err)
	// anything a bench sensor could plausibly report
	assert.Greater(t, temp.Celsius(), -40.0)
	assert.Less(t, temp.Celsius(), 125.0)
}
