package util

import "math"

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	if len(values) <= 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum / (float64(len(values)))
}

// AvgAbs calculates the average of the absolute values in the given array
func AvgAbs(values []float64) float64 {
	abs := make([]float64, len(values))
	for i, value := range values {
		abs[i] = math.Abs(value)
	}
	return Avg(abs)
}

// Coerce returns a value that is at least min and at most max
func Coerce(value float64, min float64, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}
