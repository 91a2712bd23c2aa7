//go:build !pidmath_soft

package pid

import "math"

// MathBackend names the absolute value implementation this binary was built with.
const MathBackend = "std"

func abs(x float64) float64 {
	return math.Abs(x)
}
