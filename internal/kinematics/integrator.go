package kinematics

import "fmt"

// Integrator performs cumulative trapezoidal integration of a uniformly
// sampled signal, assuming a zero initial condition. It holds no state
// between calls apart from the sampling interval.
type Integrator struct {
	dt float64
}

// NewIntegrator returns an Integrator for samples spaced dt seconds apart.
func NewIntegrator(dt float64) (*Integrator, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: time step must be positive, got %g", ErrInvalidConfig, dt)
	}
	return &Integrator{dt: dt}, nil
}

// Dt returns the sampling interval in seconds.
func (g *Integrator) Dt() float64 { return g.dt }

// Integrate returns the running integral of series using the trapezoidal
// rule. The output has the same length as the input and starts at zero.
func (g *Integrator) Integrate(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		out[i] = out[i-1] + (series[i-1]+series[i])*g.dt/2
	}
	return out
}
