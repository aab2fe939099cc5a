package kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultInitialCovariance is the diagonal of the initial covariance
// matrix when no better prior is known. A large value means the first
// observations dominate the estimate quickly.
const DefaultInitialCovariance = 1000.0

// AdaptiveDetrender removes a linear trend y = a*t + b from a signal
// using a recursive least squares estimator. Its state (covariance and
// parameter estimates) persists and evolves across every Detrend call,
// which is what lets it track a slowly drifting sensor bias.
//
// The time vector handed to Detrend is anchored at zero within each
// window while the estimator state carries over between windows; the
// slope/intercept therefore describe the trend relative to the current
// window, not to absolute elapsed time.
type AdaptiveDetrender struct {
	forgetting float64
	initCov    float64

	cov   *mat.Dense    // 2x2 covariance P
	theta *mat.VecDense // [slope, intercept]
}

// NewAdaptiveDetrender returns a detrender with the given forgetting
// factor (must be in (0, 1]) and initial covariance diagonal. A factor
// close to 1 adapts slowly and smoothly; smaller values react faster
// but follow noise.
func NewAdaptiveDetrender(forgetting, initialCovarianceDiag float64) (*AdaptiveDetrender, error) {
	if forgetting <= 0 || forgetting > 1 {
		return nil, fmt.Errorf("%w: forgetting factor must be in (0, 1], got %g", ErrInvalidConfig, forgetting)
	}
	d := &AdaptiveDetrender{
		forgetting: forgetting,
		initCov:    initialCovarianceDiag,
	}
	d.Reset()
	return d, nil
}

// Reset restores the estimator to its construction-time state,
// discarding everything learned so far.
func (d *AdaptiveDetrender) Reset() {
	d.cov = mat.NewDense(2, 2, []float64{
		d.initCov, 0,
		0, d.initCov,
	})
	d.theta = mat.NewVecDense(2, nil)
}

// Parameters returns the current slope and intercept estimates.
func (d *AdaptiveDetrender) Parameters() (slope, intercept float64) {
	return d.theta.AtVec(0), d.theta.AtVec(1)
}

// Detrend runs the RLS recursion over data, updating the estimator
// state sample by sample, and returns the detrended signal together
// with the removed trend. The trend is evaluated for the whole batch
// from the parameters as they stand after the final sample, so within
// one call it is not causal for early samples; across calls the
// estimate is continuous.
func (d *AdaptiveDetrender) Detrend(data, timeVector []float64) (detrended, trend []float64, err error) {
	if len(data) != len(timeVector) {
		return nil, nil, fmt.Errorf("%w: data length %d does not match time vector length %d",
			ErrInvalidInput, len(data), len(timeVector))
	}

	phi := mat.NewVecDense(2, nil)
	pPhi := mat.NewVecDense(2, nil)
	phiP := mat.NewVecDense(2, nil)

	for i := range data {
		phi.SetVec(0, timeVector[i])
		phi.SetVec(1, 1)

		e := data[i] - mat.Dot(d.theta, phi)

		// Gain k = P*phi / (lambda + phi'*P*phi). A zero denominator
		// cannot occur with a positive definite P; skip the update if
		// it does.
		pPhi.MulVec(d.cov, phi)
		denom := d.forgetting + mat.Dot(phi, pPhi)
		var k0, k1 float64
		if denom != 0 {
			k0 = pPhi.AtVec(0) / denom
			k1 = pPhi.AtVec(1) / denom
		}

		d.theta.SetVec(0, d.theta.AtVec(0)+k0*e)
		d.theta.SetVec(1, d.theta.AtVec(1)+k1*e)

		// P = (P - k*(phi'*P)) / lambda
		phiP.MulVec(d.cov.T(), phi)
		for r := 0; r < 2; r++ {
			k := k0
			if r == 1 {
				k = k1
			}
			for c := 0; c < 2; c++ {
				d.cov.Set(r, c, (d.cov.At(r, c)-k*phiP.AtVec(c))/d.forgetting)
			}
		}
	}

	slope, intercept := d.Parameters()
	trend = make([]float64, len(data))
	detrended = make([]float64, len(data))
	for i, t := range timeVector {
		trend[i] = slope*t + intercept
		detrended[i] = data[i] - trend[i]
	}
	return detrended, trend, nil
}
