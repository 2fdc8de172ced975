package mcp9808

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/tempmon"
)

// MockI2CBus is a mock implementation of tempmon.BusCloser using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockI2CBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

var testAddr = Address{Bus: 2, Device: DefaultAddress}

func openerFor(bus tempmon.BusCloser) tempmon.BusOpener {
	return func(ctx context.Context, n int) (tempmon.BusCloser, error) {
		return bus, nil
	}
}

func openMock(t *testing.T, opts ...ConfigOption) (*Device, *MockI2CBus) {
	t.Helper()
	bus := new(MockI2CBus)
	dev, err := Open(context.Background(), testAddr, openerFor(bus), opts...)
	require.NoError(t, err)
	return dev, bus
}

func TestDevice_Lifecycle(t *testing.T) {
	dev := New(testAddr, openerFor(new(MockI2CBus)))
	assert.Equal(t, StateUnopened, dev.State())

	require.NoError(t, dev.Open(context.Background()))
	assert.Equal(t, StateOpen, dev.State())
	// opening twice is harmless
	require.NoError(t, dev.Open(context.Background()))

	dev.bus.(*MockI2CBus).On("Close").Return(nil).Once()
	require.NoError(t, dev.Close())
	assert.Equal(t, StateClosed, dev.State())

	err := dev.Open(context.Background())
	assert.ErrorIs(t, err, tempmon.ErrNotOpen)
}

func TestDevice_OpenFailure(t *testing.T) {
	failing := func(ctx context.Context, n int) (tempmon.BusCloser, error) {
		assert.Equal(t, 7, n)
		return nil, errors.New("open /dev/i2c-7: no such file or directory")
	}
	dev, err := Open(context.Background(), Address{Bus: 7, Device: 0x18}, failing)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, tempmon.ErrBusUnavailable)
	assert.Equal(t, tempmon.KindBusUnavailable, tempmon.KindOf(err))
	assert.Contains(t, err.Error(), "no such file or directory")

	_, err = Open(context.Background(), testAddr, nil)
	assert.ErrorIs(t, err, tempmon.ErrBusUnavailable)
}

func TestDevice_Configure(t *testing.T) {
	tests := []struct {
		name     string
		opts     []ConfigOption
		expected []byte
	}{
		{name: "default", expected: []byte{0x01, 0x00, 0x00}},
		{name: "shutdown word", opts: []ConfigOption{WithConfigWord(0x0100)}, expected: []byte{0x01, 0x01, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, bus := openMock(t, tt.opts...)
			bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), tt.expected).Return(nil).Once()
			require.NoError(t, dev.Configure(context.Background()))
			assert.True(t, dev.Configured())
			bus.AssertExpectations(t)
		})
	}
}

func TestDevice_ConfigureWriteError(t *testing.T) {
	dev, bus := openMock(t)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return(errors.New("nack")).Once()
	err := dev.Configure(context.Background())
	assert.ErrorIs(t, err, tempmon.ErrIO)
	assert.EqualError(t, err, "mcp9808: could not write register 0x01: i2c transfer failed: nack")
	assert.False(t, dev.Configured())
}

func TestDevice_ReadTemperature(t *testing.T) {
	dev, bus := openMock(t)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x05}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return([]byte{0x01, 0x50}, nil).Once()

	temp, err := dev.ReadTemperature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, temp.Celsius())
	bus.AssertExpectations(t)
}

func TestDevice_ReadTemperature_ErrorCases(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockI2CBus)
		expectedError string
	}{
		{
			name: "pointer write error",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x05}).
					Return(errors.New("i2c write failed")).Once()
			},
			expectedError: "mcp9808: could not write register pointer 0x05: i2c transfer failed: i2c write failed",
		},
		{
			name: "read error",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x05}).Return(nil).Once()
				bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).
					Return(nil, errors.New("short read")).Once()
			},
			expectedError: "mcp9808: could not read register 0x05: i2c transfer failed: short read",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, bus := openMock(t)
			tt.setupMock(bus)
			_, err := dev.ReadTemperature(context.Background())
			assert.ErrorIs(t, err, tempmon.ErrIO)
			assert.EqualError(t, err, tt.expectedError)
			// the device stays usable after a failed transfer
			assert.Equal(t, StateOpen, dev.State())
			bus.AssertExpectations(t)
		})
	}
}

func TestDevice_ReadAfterClose(t *testing.T) {
	dev, bus := openMock(t)
	bus.On("Close").Return(nil).Once()
	require.NoError(t, dev.Close())

	_, err := dev.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, tempmon.ErrNotOpen)
	assert.Equal(t, tempmon.KindNotOpen, tempmon.KindOf(err))
	err = dev.Configure(context.Background())
	assert.ErrorIs(t, err, tempmon.ErrNotOpen)

	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestDevice_ReadBeforeOpen(t *testing.T) {
	bus := new(MockI2CBus)
	dev := New(testAddr, openerFor(bus))
	_, err := dev.ReadTemperature(context.Background())
	assert.ErrorIs(t, err, tempmon.ErrNotOpen)
	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestDevice_CloseTwice(t *testing.T) {
	dev, bus := openMock(t)
	bus.On("Close").Return(nil).Once()
	assert.NoError(t, dev.Close())
	assert.NoError(t, dev.Close())
	assert.Equal(t, StateClosed, dev.State())
	bus.AssertNumberOfCalls(t, "Close", 1)
}

func TestDevice_CloseNeverOpened(t *testing.T) {
	var dev Device
	assert.NoError(t, dev.Close())
	assert.NoError(t, dev.Close())
	assert.Equal(t, StateClosed, dev.State())
}

func TestDevice_Check(t *testing.T) {
	tests := []struct {
		name         string
		manufacturer []byte
		device       []byte
		expected     Identity
		err          error
	}{
		{
			name:         "mcp9808",
			manufacturer: []byte{0x00, 0x54},
			device:       []byte{0x04, 0x01},
			expected:     Identity{Manufacturer: 0x54, Device: 0x04, Revision: 0x01},
		},
		{
			name:         "foreign part",
			manufacturer: []byte{0x00, 0x41},
			device:       []byte{0x02, 0x00},
			expected:     Identity{Manufacturer: 0x41, Device: 0x02},
			err:          ErrUnexpectedDevice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, bus := openMock(t)
			bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x06}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return(tt.manufacturer, nil).Once()
			bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x07}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return(tt.device, nil).Once()

			id, err := dev.Check(context.Background())
			assert.Equal(t, tt.expected, id)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			bus.AssertExpectations(t)
		})
	}
}

func TestDevice_ShutdownWake(t *testing.T) {
	dev, bus := openMock(t)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x01}).Return(nil).Twice()
	bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return([]byte{0x00, 0x20}, nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x01, 0x01, 0x20}).Return(nil).Once()
	require.NoError(t, dev.Shutdown(ctx))

	bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return([]byte{0x01, 0x20}, nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x01, 0x00, 0x20}).Return(nil).Once()
	require.NoError(t, dev.Wake(ctx))

	bus.AssertExpectations(t)
}

func TestDevice_SetResolution(t *testing.T) {
	dev, bus := openMock(t)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0x08, 0x01}).Return(nil).Once()
	require.NoError(t, dev.SetResolution(context.Background(), ResolutionQuarter))
	bus.AssertExpectations(t)
}

func TestMockSensor_Sequence(t *testing.T) {
	sensor := NewMockSensor(Sequence(tempmon.FromCelsius(20), tempmon.FromCelsius(21)))
	ctx := context.Background()
	for _, expected := range []float64{20, 21, 21} {
		temp, err := sensor.ReadTemperature(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, temp.Celsius())
	}
}
