package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/TranDung6129/real-time-displacement/internal/analysis"
	"github.com/TranDung6129/real-time-displacement/internal/export"
	"github.com/TranDung6129/real-time-displacement/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "path to a recorded session CSV")
	rate := flag.Float64("rate", 200, "sample rate of the recording in Hz")
	fftPoints := flag.Int("fft", 512, "number of points per spectrum")
	zThreshold := flag.Float64("zscore", 3.0, "z-score threshold for outlier detection")
	jumpThreshold := flag.Float64("jump", 1.0, "threshold for sudden-change detection (m/s² per sample)")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing -input: path to a recorded session CSV")
	}

	ds, err := export.Read(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}
	if len(ds.Time) == 0 {
		log.Fatalf("%s contains no samples", *input)
	}

	dt := 1.0 / *rate
	fmt.Printf("session: %s (%d samples, %.1f s at %.0f Hz)\n\n",
		*input, len(ds.Time), float64(len(ds.Time))*dt, *rate)

	for _, a := range pipeline.Axes {
		fmt.Printf("=== axis %s ===\n", a)
		reportSeries("acceleration [m/s²]", ds.Acc[a], dt, *fftPoints, *zThreshold, *jumpThreshold)
		reportSeries("velocity     [m/s]", ds.Vel[a], dt, *fftPoints, *zThreshold, *jumpThreshold)
		reportSeries("displacement [m]", ds.Disp[a], dt, *fftPoints, *zThreshold, *jumpThreshold)
		fmt.Println()
	}

	printCorrelation(ds)
}

func reportSeries(name string, data []float64, dt float64, fftPoints int, zThreshold, jumpThreshold float64) {
	desc, ok := analysis.Describe(data)
	if !ok {
		fmt.Printf("  %s: no data\n", name)
		return
	}
	fmt.Printf("  %s: mean=%.4f std=%.4f min=%.4f max=%.4f\n",
		name, desc.Mean, desc.StdDev, desc.Min, desc.Max)

	if freqs, amps := analysis.Spectrum(data, dt, fftPoints, analysis.WindowHann); freqs != nil {
		if dom, ok := analysis.DominantFrequency(freqs, amps, 0.5); ok {
			fmt.Printf("    dominant frequency: %.2f Hz\n", dom)
		}
	}

	if idx, _ := analysis.OutliersZScore(data, zThreshold); len(idx) > 0 {
		fmt.Printf("    outliers (|z| > %.1f): %d samples, first at t=%.3fs\n",
			zThreshold, len(idx), float64(idx[0])*dt)
	}

	if idx, diffs := analysis.SuddenChanges(data, jumpThreshold); len(idx) > 0 {
		fmt.Printf("    sudden changes (> %.2f): %d, largest %.4f at t=%.3fs\n",
			jumpThreshold, len(idx), maxAbs(diffs), float64(idx[0])*dt)
	}
}

func printCorrelation(ds *export.Dataset) {
	series := [][]float64{
		ds.Acc[pipeline.AxisX], ds.Acc[pipeline.AxisY], ds.Acc[pipeline.AxisZ],
	}
	corr, err := analysis.Correlation(series)
	if err != nil {
		log.Printf("correlation: %v", err)
		return
	}

	fmt.Println("acceleration cross-axis correlation:")
	fmt.Println("          x        y        z")
	for i, a := range pipeline.Axes {
		fmt.Printf("  %s  ", a)
		for j := range pipeline.Axes {
			fmt.Printf(" %8.4f", corr.At(i, j))
		}
		fmt.Println()
	}
}

func maxAbs(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}
