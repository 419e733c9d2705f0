package vswap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/qflib/black"
)

func TestStaticPayoff(t *testing.T) {
	t.Parallel()

	// At x = x0 both terms vanish.
	assert.Equal(t, 0.0, StaticPayoff(100, 100, 100))
	// Convex: chord midpoint lies above the payoff.
	mid := StaticPayoff(100, 100, 100)
	chord := (StaticPayoff(100, 100, 80) + StaticPayoff(100, 100, 120)) / 2
	assert.Greater(t, chord, mid)
}

func TestWeights(t *testing.T) {
	t.Parallel()

	k := []float64{80, 90, 100, 110, 120}
	w, err := Weights(100, 100, k)
	require.NoError(t, err)
	require.Len(t, w, len(k))

	// Boundary weights carry no meaning.
	assert.Equal(t, 0.0, w[0])
	assert.Equal(t, 0.0, w[len(k)-1])

	// Interior weights approximate f''(k)*h = 2h/k^2: positive,
	// decreasing in strike.
	for i := 1; i < len(k)-1; i++ {
		assert.Greater(t, w[i], 0.0)
		approx := 2 * 10 / (k[i] * k[i])
		assert.InDelta(t, approx, w[i], 0.1*approx)
	}
	assert.Greater(t, w[1], w[2])
	assert.Greater(t, w[2], w[3])
}

func TestWeightsBadGrid(t *testing.T) {
	t.Parallel()

	_, err := Weights(100, 100, []float64{80, 90})
	require.ErrorIs(t, err, ErrStrikes)
	_, err = Weights(100, 100, []float64{80, 80, 90})
	require.ErrorIs(t, err, ErrStrikes)
	_, err = Weights(-1, 100, []float64{80, 90, 100})
	require.ErrorIs(t, err, ErrStrikes)
}

// Par variance of a flat-vol lognormal chain recovers sigma^2: with
// E[X] = x0 = z the hedge terms have zero expectation and
// E[-2 log(X/x0)] = s^2 = sigma^2 * T.
func TestParVarianceFlatVol(t *testing.T) {
	t.Parallel()

	const (
		x0    = 100.0
		sigma = 0.2
		T     = 0.5
	)
	s := sigma * math.Sqrt(T)

	var k, puts, calls []float64
	for strike := 50.0; strike <= 200; strike += 5 {
		p, err := black.PutValue(x0, s, strike)
		require.NoError(t, err)
		c, err := black.CallValue(x0, s, strike)
		require.NoError(t, err)
		k = append(k, strike)
		puts = append(puts, p)
		calls = append(calls, c)
	}

	got, err := ParVariance(T, x0, 100, k, puts, calls)
	require.NoError(t, err)
	assert.InDelta(t, sigma*sigma, got, 0.004)
}

func TestParVarianceSeparatorOffGrid(t *testing.T) {
	t.Parallel()

	k := []float64{80, 90, 100, 110}
	q := []float64{1, 2, 3, 4}
	c := []float64{4, 3, 2, 1}
	_, err := ParVariance(1, 100, 95, k, q, c)
	require.ErrorIs(t, err, ErrSeparator)
}

func TestParVarianceMonotonicity(t *testing.T) {
	t.Parallel()

	k := []float64{80, 90, 100, 110}
	badPuts := []float64{3, 2, 3, 4} // dips: not nondecreasing
	calls := []float64{4, 3, 2, 1}
	_, err := ParVariance(1, 100, 100, k, badPuts, calls)
	require.ErrorIs(t, err, ErrQuotes)

	// NaN and zero quotes are skipped, not rejected.
	sparsePuts := []float64{math.NaN(), 2, 0, 4}
	_, err = ParVariance(1, 100, 100, k, sparsePuts, calls)
	require.NoError(t, err)
}

func TestParVarianceLengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := ParVariance(1, 100, 100, []float64{80, 100, 120}, []float64{1, 2}, []float64{2, 1, 0.5})
	require.Error(t, err)
}
