package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	d, ok := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 5.0, d.Mean, 1e-12)
	assert.InDelta(t, 4.5, d.Median, 1e-12)
	assert.InDelta(t, 2.0, d.StdDev, 1e-12) // classic population-stddev example
	assert.InDelta(t, 4.0, d.Variance, 1e-12)
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 9.0, d.Max)
}

func TestDescribeOddLengthMedian(t *testing.T) {
	t.Parallel()

	d, ok := Describe([]float64{3, 1, 2})
	require.True(t, ok)
	assert.Equal(t, 2.0, d.Median)
}

func TestDescribeEmpty(t *testing.T) {
	t.Parallel()

	_, ok := Describe(nil)
	assert.False(t, ok)
}

func TestCorrelation(t *testing.T) {
	t.Parallel()

	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10} // perfectly correlated with x
	z := []float64{5, 4, 3, 2, 1}  // perfectly anti-correlated

	corr, err := Correlation([][]float64{x, y, z})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-12)
	assert.InDelta(t, -1.0, corr.At(0, 2), 1e-12)
	assert.InDelta(t, -1.0, corr.At(1, 2), 1e-12)
}

func TestCorrelationLengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := Correlation([][]float64{{1, 2, 3}, {1, 2}})
	assert.Error(t, err)

	_, err = Correlation(nil)
	assert.Error(t, err)
}

func TestHistogram(t *testing.T) {
	t.Parallel()

	counts, edges := Histogram([]float64{0, 0.1, 0.4, 0.6, 0.9, 1.0}, 2)
	require.Len(t, counts, 2)
	require.Len(t, edges, 3)
	assert.Equal(t, 0.0, edges[0])
	assert.Equal(t, 1.0, edges[2])
	assert.Equal(t, 3, counts[0])
	assert.Equal(t, 3, counts[1]) // the maximum falls into the last bin
}

func TestHistogramConstantData(t *testing.T) {
	t.Parallel()

	counts, edges := Histogram([]float64{3, 3, 3}, 4)
	require.Len(t, counts, 4)
	assert.InDelta(t, 2.5, edges[0], 1e-12)
	assert.InDelta(t, 3.5, edges[len(edges)-1], 1e-12)

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 3, total)
}

func TestHistogramEmpty(t *testing.T) {
	t.Parallel()

	counts, edges := Histogram(nil, 10)
	assert.Nil(t, counts)
	assert.Nil(t, edges)
}
