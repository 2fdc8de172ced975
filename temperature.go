package tempmon

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// Temperature is a fixed-point Celsius value with 1/16 °C resolution, the native
// resolution of MCP9808-class sensors. Comparing two values compares the raw
// register fraction, so no floating point drift is introduced.
type Temperature int16

// Sixteenth is the smallest representable step (0.0625 °C).
const Sixteenth Temperature = 1

const (
	MinTemperature Temperature = -4096 // -256.0 °C
	MaxTemperature Temperature = 4095  // +255.9375 °C
)

// FromCelsius rounds c to the nearest sixteenth of a degree, clamping to the
// sensor range.
func FromCelsius(c float64) Temperature {
	v := math.Round(c * 16)
	if v < float64(MinTemperature) {
		return MinTemperature
	}
	if v > float64(MaxTemperature) {
		return MaxTemperature
	}
	return Temperature(v)
}

func (t Temperature) Celsius() float64 {
	return float64(t) / 16
}

func (t Temperature) Fahrenheit() float64 {
	return t.Celsius()*9/5 + 32
}

// Physic converts to periph.io units (nano Kelvin).
func (t Temperature) Physic() physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(t)*physic.Celsius/16
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.1f°C", t.Celsius())
}
