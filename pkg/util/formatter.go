package util

import (
	"fmt"
	"math"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	case absValue >= 1e-15:
		return fmt.Sprintf("%.3f f%s", value*1e15, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatPhase prints a junction phase in radians together with its
// multiple of 2π, which is the number of flux quanta that slipped.
func FormatPhase(phase float64) string {
	return fmt.Sprintf("%.4f rad (%.3f x 2pi)", phase, phase/(2*math.Pi))
}
