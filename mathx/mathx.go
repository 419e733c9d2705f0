// Package mathx holds small numeric helpers shared by the solvers.
package mathx

import "math"

// Epsilon is the double-precision machine epsilon.
const Epsilon = 0x1p-52

// SqrtEpsilon is sqrt(Epsilon), the default root-finding tolerance.
const SqrtEpsilon = 0x1p-26

// Sgn returns -1, 0 or 1 according to the sign of x.
func Sgn(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// SameSign reports whether x and y have the same sign (zero counts as its own sign).
func SameSign(x, y float64) bool {
	return Sgn(x) == Sgn(y)
}

// IsNaN reports whether x is a quiet NaN.
func IsNaN(x float64) bool {
	return math.IsNaN(x)
}
