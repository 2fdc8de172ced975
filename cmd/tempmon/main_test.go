package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/tempmon/cmd/tempmon/console"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	console.SetOutput(&out, &out)
	t.Cleanup(func() { console.SetOutput(os.Stdout, os.Stderr) })
	return &out
}

// testApp keeps exit errors from terminating the test binary.
func testApp() *cli.App {
	app := newApp()
	app.ExitErrHandler = func(c *cli.Context, err error) {}
	return app
}

func TestReadMock(t *testing.T) {
	out := captureOutput(t)
	err := testApp().Run([]string{"tempmon", "read", "--adapter", "mock"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), console.PictoThermometer)
	assert.Contains(t, out.String(), "°C")
}

func TestReadConfigError(t *testing.T) {
	captureOutput(t)
	path := filepath.Join(t.TempDir(), "tempmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sensor:\n  adapter: ftdi\n"), 0o600))

	err := testApp().Run([]string{"tempmon", "--config", path, "read"})
	var exerr cli.ExitCoder
	require.ErrorAs(t, err, &exerr)
	assert.Equal(t, 1, exerr.ExitCode())
	assert.Contains(t, err.Error(), "configuration error")
}

func TestCheckRejectsMock(t *testing.T) {
	captureOutput(t)
	err := testApp().Run([]string{"tempmon", "check", "--adapter", "mock"})
	assert.ErrorContains(t, err, `adapter "mock" does not provide an i2c bus`)
}

func TestDrift(t *testing.T) {
	start := time.Now()
	behavior := drift(start.Add(-15*time.Second), time.Minute)
	temp, err := behavior(context.Background())
	require.NoError(t, err)
	// a quarter period in, the simulated reading peaks
	assert.InDelta(t, 30.0, temp.Celsius(), 0.1)
}
