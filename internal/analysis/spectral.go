// Package analysis provides spectral, statistical and anomaly tooling
// over processed kinematic series. All functions are pure; they never
// mutate their inputs.
package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Window selects the taper applied before the FFT.
type Window int

const (
	WindowHann Window = iota
	WindowHamming
	WindowBlackman
	WindowRectangular
)

func (w Window) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowBlackman:
		return "blackman"
	case WindowRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// Spectrum computes the single-sided amplitude spectrum of the most
// recent nPoints samples of data, sampled dt seconds apart. It returns
// nil slices when less than nPoints samples are available.
func Spectrum(data []float64, dt float64, nPoints int, win Window) (freqs, amps []float64) {
	if len(data) < nPoints || nPoints <= 0 || dt <= 0 {
		return nil, nil
	}

	segment := make([]float64, nPoints)
	copy(segment, data[len(data)-nPoints:])

	switch win {
	case WindowHann:
		window.Hann(segment)
	case WindowHamming:
		window.Hamming(segment)
	case WindowBlackman:
		window.Blackman(segment)
	case WindowRectangular:
		// no taper
	}

	fft := fourier.NewFFT(nPoints)
	coeffs := fft.Coefficients(nil, segment)

	freqs = make([]float64, len(coeffs))
	amps = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		amps[i] = cmplx.Abs(c)
	}
	return freqs, amps
}

// DominantFrequency returns the frequency with the largest amplitude at
// or above minFreq, and whether one was found. The minimum keeps the DC
// bias and near-DC drift leakage from winning.
func DominantFrequency(freqs, amps []float64, minFreq float64) (float64, bool) {
	if len(freqs) == 0 || len(freqs) != len(amps) {
		return 0, false
	}

	best := -1
	for i, f := range freqs {
		if f < minFreq {
			continue
		}
		if best < 0 || amps[i] > amps[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return freqs[best], true
}
