package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdaptiveDetrender(t *testing.T) {
	t.Parallel()

	for _, bad := range []float64{0, -0.5, 1.0001, 2} {
		_, err := NewAdaptiveDetrender(bad, DefaultInitialCovariance)
		assert.ErrorIs(t, err, ErrInvalidConfig, "forgetting=%g", bad)
	}

	d, err := NewAdaptiveDetrender(1, DefaultInitialCovariance)
	require.NoError(t, err)
	slope, intercept := d.Parameters()
	assert.Zero(t, slope)
	assert.Zero(t, intercept)
}

func TestDetrendLengthMismatch(t *testing.T) {
	t.Parallel()
	d, err := NewAdaptiveDetrender(0.98, DefaultInitialCovariance)
	require.NoError(t, err)

	_, _, err = d.Detrend([]float64{1, 2, 3}, []float64{0, 0.01})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDetrendConvergesOnLinearSignal(t *testing.T) {
	t.Parallel()

	// On an exact linear signal the estimator should drive the residual
	// to zero as theta approaches (a, b).
	const (
		a  = 2.0
		b  = 1.0
		dt = 0.01
		n  = 128
	)
	d, err := NewAdaptiveDetrender(0.98, DefaultInitialCovariance)
	require.NoError(t, err)

	timeVector := make([]float64, n)
	data := make([]float64, n)
	for i := range timeVector {
		timeVector[i] = float64(i) * dt
		data[i] = a*timeVector[i] + b
	}

	var detrended []float64
	for batch := 0; batch < 5; batch++ {
		detrended, _, err = d.Detrend(data, timeVector)
		require.NoError(t, err)
	}

	slope, intercept := d.Parameters()
	assert.InDelta(t, a, slope, 1e-3)
	assert.InDelta(t, b, intercept, 1e-3)
	for i, v := range detrended {
		assert.InDelta(t, 0, v, 1e-3, "residual at %d", i)
	}
}

func TestDetrendTrendPlusResidualEqualsInput(t *testing.T) {
	t.Parallel()
	d, err := NewAdaptiveDetrender(0.95, DefaultInitialCovariance)
	require.NoError(t, err)

	data := []float64{0.3, -0.1, 0.7, 1.2, -0.4, 0.9}
	timeVector := []float64{0, 0.01, 0.02, 0.03, 0.04, 0.05}

	detrended, trend, err := d.Detrend(data, timeVector)
	require.NoError(t, err)
	require.Len(t, detrended, len(data))
	require.Len(t, trend, len(data))
	for i := range data {
		assert.InDelta(t, data[i], detrended[i]+trend[i], 1e-12)
	}
}

func TestDetrendTrendUsesFinalParameters(t *testing.T) {
	t.Parallel()
	d, err := NewAdaptiveDetrender(0.98, DefaultInitialCovariance)
	require.NoError(t, err)

	data := []float64{1, 2, 3, 4}
	timeVector := []float64{0, 1, 2, 3}

	_, trend, err := d.Detrend(data, timeVector)
	require.NoError(t, err)

	// The whole returned trend lies on one line defined by the
	// post-batch parameters, not on the per-step evolving estimates.
	slope, intercept := d.Parameters()
	for i, ti := range timeVector {
		assert.InDelta(t, slope*ti+intercept, trend[i], 1e-12)
	}
}

func TestResetRestoresFreshBehavior(t *testing.T) {
	t.Parallel()

	data := []float64{0.5, 1.5, -0.5, 2.0, 0.1, -1.2, 0.8, 0.0}
	timeVector := make([]float64, len(data))
	for i := range timeVector {
		timeVector[i] = float64(i) * 0.01
	}

	run := func(d *AdaptiveDetrender) [][]float64 {
		var outs [][]float64
		for batch := 0; batch < 3; batch++ {
			out, _, err := d.Detrend(data, timeVector)
			require.NoError(t, err)
			outs = append(outs, out)
		}
		return outs
	}

	seasoned, err := NewAdaptiveDetrender(0.97, DefaultInitialCovariance)
	require.NoError(t, err)
	run(seasoned) // accumulate some state
	seasoned.Reset()
	replay := run(seasoned)

	fresh, err := NewAdaptiveDetrender(0.97, DefaultInitialCovariance)
	require.NoError(t, err)
	expected := run(fresh)

	require.Equal(t, len(expected), len(replay))
	for b := range expected {
		for i := range expected[b] {
			assert.InDelta(t, expected[b][i], replay[b][i], 1e-12, "batch %d index %d", b, i)
		}
	}
}

func TestDetrendEmptyBatch(t *testing.T) {
	t.Parallel()
	d, err := NewAdaptiveDetrender(0.98, DefaultInitialCovariance)
	require.NoError(t, err)

	detrended, trend, err := d.Detrend(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, detrended)
	assert.Empty(t, trend)

	slope, intercept := d.Parameters()
	assert.False(t, math.IsNaN(slope))
	assert.Zero(t, slope)
	assert.Zero(t, intercept)
}
