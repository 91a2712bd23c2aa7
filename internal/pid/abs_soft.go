//go:build pidmath_soft

package pid

import "math"

// MathBackend names the absolute value implementation this binary was built with.
const MathBackend = "soft"

const signBit = uint64(1) << 63

// abs clears the sign bit directly instead of calling into the float
// routines of the math package.
func abs(x float64) float64 {
	return math.Float64frombits(math.Float64bits(x) &^ signBit)
}
