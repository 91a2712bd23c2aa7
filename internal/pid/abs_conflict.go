//go:build pidmath_soft && pidmath_std

package pid

// Only one math backend can be selected per build.
var _ = cannot_enable_both_pidmath_soft_and_pidmath_std
