package mcp9808

import (
	"context"

	"github.com/mklimuk/tempmon"
)

// TemperatureBehaviorFunc produces a reading or an error for the mock sensor.
type TemperatureBehaviorFunc func(ctx context.Context) (tempmon.Temperature, error)

// MockSensor stands in for a Device without any hardware. It satisfies the
// same sampling contract as Device.ReadTemperature.
type MockSensor struct {
	behavior TemperatureBehaviorFunc
}

// NewMockSensor creates a mock sensor calling behavior on every read.
//
// Example usage:
//
//	// Static value
//	sensor := NewMockSensor(func(ctx context.Context) (tempmon.Temperature, error) {
//		return tempmon.FromCelsius(21.5), nil
//	})
//
//	// Replayed sequence
//	sensor := NewMockSensor(Sequence(tempmon.FromCelsius(20), tempmon.FromCelsius(20.5)))
func NewMockSensor(behavior TemperatureBehaviorFunc) *MockSensor {
	return &MockSensor{behavior: behavior}
}

func (m *MockSensor) ReadTemperature(ctx context.Context) (tempmon.Temperature, error) {
	return m.behavior(ctx)
}

func (m *MockSensor) Close() error {
	return nil
}

// Sequence returns a behavior replaying values in order and repeating the
// last one once exhausted. It is not safe for concurrent use.
func Sequence(values ...tempmon.Temperature) TemperatureBehaviorFunc {
	i := 0
	return func(ctx context.Context) (tempmon.Temperature, error) {
		if len(values) == 0 {
			return 0, nil
		}
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}
