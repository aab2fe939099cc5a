package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// OutliersZScore flags samples whose absolute z-score exceeds
// threshold. It returns the flagged indices and their values.
func OutliersZScore(data []float64, threshold float64) (indices []int, values []float64) {
	if len(data) == 0 {
		return nil, nil
	}
	mean := stat.Mean(data, nil)
	std := stat.PopStdDev(data, nil)
	if std == 0 {
		return nil, nil
	}
	for i, v := range data {
		if math.Abs((v-mean)/std) > threshold {
			indices = append(indices, i)
			values = append(values, v)
		}
	}
	return indices, values
}

// MovingWindowAnomalies flags samples outside a band of threshold
// standard deviations around a moving average. The band at sample i
// (for i >= windowSize-1) is computed from the window ending at i.
func MovingWindowAnomalies(data []float64, windowSize int, threshold float64) (indices []int, values []float64) {
	if windowSize <= 0 || len(data) < windowSize {
		return nil, nil
	}
	for i := windowSize - 1; i < len(data); i++ {
		win := data[i-windowSize+1 : i+1]
		mean := stat.Mean(win, nil)
		std := stat.PopStdDev(win, nil)
		if math.Abs(data[i]-mean) > threshold*std {
			indices = append(indices, i)
			values = append(values, data[i])
		}
	}
	return indices, values
}

// SuddenChanges flags jumps between consecutive samples whose absolute
// first difference exceeds threshold. The returned index is the sample
// before the jump; the value is the signed jump magnitude.
func SuddenChanges(data []float64, threshold float64) (indices []int, magnitudes []float64) {
	if len(data) < 2 {
		return nil, nil
	}
	for i := 1; i < len(data); i++ {
		d := data[i] - data[i-1]
		if math.Abs(d) > threshold {
			indices = append(indices, i-1)
			magnitudes = append(magnitudes, d)
		}
	}
	return indices, magnitudes
}
