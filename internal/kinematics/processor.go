package kinematics

import (
	"fmt"
	"log"
	"math"
)

// Defaults matching the tuning the sensor rig ships with.
const (
	DefaultSampleFrameSize     = 20
	DefaultCalcFrameMultiplier = 100
	DefaultForgettingFactor    = 0.9825
	DefaultWarmupFrames        = 5
)

// KinematicProcessor turns a stream of raw acceleration frames into
// velocity and displacement estimates for a single axis. It keeps a
// rolling window of calcFrameSize samples per quantity and recomputes
// the whole window on every frame: integrate acceleration, detrend the
// velocity, integrate again, detrend the displacement. The two
// detrenders are stateful and survive buffer rotation, which is what
// keeps the double integration from drifting away.
//
// An instance is not safe for concurrent use; frames must arrive in
// order, one call at a time. Each axis owns its own instance.
type KinematicProcessor struct {
	dt              float64
	sampleFrameSize int
	calcFrameSize   int
	warmupFrames    int

	accBuffer  []float64
	velBuffer  []float64
	dispBuffer []float64
	timeVector []float64

	integrator    *Integrator
	velDetrender  *AdaptiveDetrender
	dispDetrender *AdaptiveDetrender

	frameCount int
}

// NewKinematicProcessor validates the configuration and allocates the
// rolling buffers (zero-filled) and the static time vector.
func NewKinematicProcessor(dt float64, sampleFrameSize, calcFrameMultiplier int,
	forgettingVel, forgettingDisp float64, warmupFrames int) (*KinematicProcessor, error) {

	if sampleFrameSize <= 0 {
		return nil, fmt.Errorf("%w: sample frame size must be positive, got %d", ErrInvalidConfig, sampleFrameSize)
	}
	if calcFrameMultiplier <= 0 {
		return nil, fmt.Errorf("%w: calc frame multiplier must be positive, got %d", ErrInvalidConfig, calcFrameMultiplier)
	}
	if warmupFrames < 0 {
		return nil, fmt.Errorf("%w: warmup frames must not be negative, got %d", ErrInvalidConfig, warmupFrames)
	}

	integrator, err := NewIntegrator(dt)
	if err != nil {
		return nil, err
	}
	velDetrender, err := NewAdaptiveDetrender(forgettingVel, DefaultInitialCovariance)
	if err != nil {
		return nil, fmt.Errorf("velocity detrender: %w", err)
	}
	dispDetrender, err := NewAdaptiveDetrender(forgettingDisp, DefaultInitialCovariance)
	if err != nil {
		return nil, fmt.Errorf("displacement detrender: %w", err)
	}

	calcFrameSize := sampleFrameSize * calcFrameMultiplier
	timeVector := make([]float64, calcFrameSize)
	for i := range timeVector {
		timeVector[i] = float64(i) * dt
	}

	return &KinematicProcessor{
		dt:              dt,
		sampleFrameSize: sampleFrameSize,
		calcFrameSize:   calcFrameSize,
		warmupFrames:    warmupFrames,
		accBuffer:       make([]float64, calcFrameSize),
		velBuffer:       make([]float64, calcFrameSize),
		dispBuffer:      make([]float64, calcFrameSize),
		timeVector:      timeVector,
		integrator:      integrator,
		velDetrender:    velDetrender,
		dispDetrender:   dispDetrender,
	}, nil
}

// SampleFrameSize returns the nominal per-call frame length.
func (p *KinematicProcessor) SampleFrameSize() int { return p.sampleFrameSize }

// CalcFrameSize returns the rolling window length.
func (p *KinematicProcessor) CalcFrameSize() int { return p.calcFrameSize }

// FrameCount returns the number of frames ingested since the last reset.
func (p *KinematicProcessor) FrameCount() int { return p.frameCount }

// IsWarmedUp reports whether enough frames have been processed for the
// detrenders to have converged to something trustworthy.
func (p *KinematicProcessor) IsWarmedUp() bool { return p.frameCount >= p.warmupFrames }

// Reset zeroes all rolling buffers, resets both detrenders and the
// frame counter. The processor behaves as freshly constructed afterwards.
func (p *KinematicProcessor) Reset() {
	for i := range p.accBuffer {
		p.accBuffer[i] = 0
		p.velBuffer[i] = 0
		p.dispBuffer[i] = 0
	}
	p.velDetrender.Reset()
	p.dispDetrender.Reset()
	p.frameCount = 0
}

// ProcessFrame ingests one frame of raw acceleration samples and
// returns the displacement, velocity and acceleration segments covering
// that frame, each sampleFrameSize long.
//
// An empty frame is a "no data" sentinel: three NaN-filled segments are
// returned and no state is touched. Frames that are too long are
// truncated and frames that are too short are padded by repeating their
// last value; both cases log a warning and continue.
func (p *KinematicProcessor) ProcessFrame(accFrame []float64) (disp, vel, acc []float64) {
	n := p.sampleFrameSize

	if len(accFrame) == 0 {
		log.Printf("kinematics: empty acceleration frame, returning NaN segments")
		return nanSegment(n), nanSegment(n), nanSegment(n)
	}

	frame := make([]float64, n)
	switch {
	case len(accFrame) >= n:
		if len(accFrame) > n {
			log.Printf("kinematics: frame length %d exceeds frame size %d, truncating", len(accFrame), n)
		}
		copy(frame, accFrame[:n])
	default:
		log.Printf("kinematics: frame length %d below frame size %d, padding with last value", len(accFrame), n)
		copy(frame, accFrame)
		last := accFrame[len(accFrame)-1]
		for i := len(accFrame); i < n; i++ {
			frame[i] = last
		}
	}

	p.frameCount++

	// Slide the window: drop the oldest frame, append the new one.
	copy(p.accBuffer, p.accBuffer[n:])
	copy(p.accBuffer[p.calcFrameSize-n:], frame)

	p.recomputeWindow()

	return tail(p.dispBuffer, n), tail(p.velBuffer, n), tail(p.accBuffer, n)
}

// recomputeWindow runs the integrate/detrend cascade over the entire
// acceleration window. The detrenders update their state here.
func (p *KinematicProcessor) recomputeWindow() {
	rawVel := p.integrator.Integrate(p.accBuffer)
	// A length mismatch cannot occur: every buffer and the time vector
	// are calcFrameSize long for the processor's lifetime.
	vel, _, _ := p.velDetrender.Detrend(rawVel, p.timeVector)
	p.velBuffer = vel

	rawDisp := p.integrator.Integrate(vel)
	disp, _, _ := p.dispDetrender.Detrend(rawDisp, p.timeVector)
	p.dispBuffer = disp
}

// CumulativeResults returns copies of the time vector and the full
// displacement, velocity and acceleration windows. Reading never
// mutates processor state.
func (p *KinematicProcessor) CumulativeResults() (timeVector, disp, vel, acc []float64) {
	return copySlice(p.timeVector), copySlice(p.dispBuffer), copySlice(p.velBuffer), copySlice(p.accBuffer)
}

func nanSegment(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func tail(s []float64, n int) []float64 {
	return copySlice(s[len(s)-n:])
}

func copySlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
