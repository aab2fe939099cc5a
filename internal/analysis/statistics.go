package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Descriptive summarizes one series. StdDev and Variance are the
// population statistics, matching what the plotting tools report.
type Descriptive struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"stdDev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Variance float64 `json:"variance"`
}

// Describe computes descriptive statistics for data. The second return
// is false when data is empty.
func Describe(data []float64) (Descriptive, bool) {
	if len(data) == 0 {
		return Descriptive{}, false
	}
	return Descriptive{
		Mean:     stat.Mean(data, nil),
		Median:   median(data),
		StdDev:   stat.PopStdDev(data, nil),
		Min:      floats.Min(data),
		Max:      floats.Max(data),
		Variance: stat.PopVariance(data, nil),
	}, true
}

func median(data []float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Correlation computes the Pearson correlation matrix across several
// equally long series. The result is indexed in series order.
func Correlation(series [][]float64) (*mat.SymDense, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("analysis: no series given")
	}
	n := len(series[0])
	if n == 0 {
		return nil, fmt.Errorf("analysis: empty series")
	}
	for i, s := range series {
		if len(s) != n {
			return nil, fmt.Errorf("analysis: series %d has length %d, want %d", i, len(s), n)
		}
	}

	// Observations in rows, series in columns.
	m := mat.NewDense(n, len(series), nil)
	for j, s := range series {
		for i, v := range s {
			m.Set(i, j, v)
		}
	}
	corr := mat.NewSymDense(len(series), nil)
	stat.CorrelationMatrix(corr, m, nil)
	return corr, nil
}

// Histogram bins data into numBins equally wide bins spanning the data
// range. It returns per-bin counts and the numBins+1 bin edges; nil
// when data is empty.
func Histogram(data []float64, numBins int) (counts []int, edges []float64) {
	if len(data) == 0 || numBins <= 0 {
		return nil, nil
	}

	lo, hi := floats.Min(data), floats.Max(data)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges = make([]float64, numBins+1)
	floats.Span(edges, lo, hi)

	counts = make([]int, numBins)
	width := (hi - lo) / float64(numBins)
	for _, v := range data {
		idx := int((v - lo) / width)
		if idx >= numBins { // the maximum belongs to the last bin
			idx = numBins - 1
		}
		counts[idx]++
	}
	return counts, edges
}
