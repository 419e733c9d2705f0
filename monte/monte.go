// Package monte provides sample mean and variance accumulation for
// Monte Carlo estimates.
//
// Randomness is never owned by this package: samplers close over whatever
// generator the caller supplies, so results are reproducible from the
// caller's seed.
package monte

// Sample draws n values from f and returns the running sample mean and
// variance using Welford's method:
//
//	m_n  = m_{n-1} + (x_n - m_{n-1})/n
//	s2_n = s2_{n-1} + (x_n^2 - s2_{n-1})/n
//	Var  = s2_n - m_n^2
func Sample(n int, f func() float64) (mean, variance float64) {
	var m, s2 float64
	for i := 1; i <= n; i++ {
		x := f()
		m += (x - m) / float64(i)
		s2 += (x*x - s2) / float64(i)
	}
	return m, s2 - m*m
}

// SampleSlice returns the mean and variance of a fixed sample.
func SampleSlice(xs []float64) (mean, variance float64) {
	var m, s2 float64
	for i, x := range xs {
		n := float64(i + 1)
		m += (x - m) / n
		s2 += (x*x - s2) / n
	}
	return m, s2 - m*m
}
