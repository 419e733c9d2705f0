// Package variate provides standard normal distribution helpers and sampling.
package variate

import (
	"math"
	"math/rand"
)

// NormalCDF returns P(Z <= z) for a standard normal Z.
// https://en.wikipedia.org/wiki/Error_function#Cumulative_distribution_function
func NormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// NormalPDF returns the standard normal density at z.
func NormalPDF(z float64) float64 {
	return math.Exp(-0.5*z*z) / math.Sqrt(2*math.Pi)
}

// Normal draws a standard normal variate from the supplied generator.
func Normal(rng *rand.Rand) float64 {
	return rng.NormFloat64()
}
