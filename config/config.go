// Package config centralizes solver parameters for curve calibration.
package config

// Config holds calibration parameters. These were magic numbers in early
// versions of the bootstrap code.
type Config struct {
	// Tolerance is the absolute present-value tolerance for a pillar to
	// count as calibrated.
	Tolerance float64

	// MaxIterations is the per-pillar root-finder iteration budget.
	MaxIterations int

	// SeedBump offsets the second secant seed from the first
	// (rate and rate + SeedBump).
	SeedBump float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Tolerance:     1e-8,
	MaxIterations: 100,
	SeedBump:      0.01,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}
