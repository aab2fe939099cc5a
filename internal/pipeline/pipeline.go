// Package pipeline assembles decoded sensor samples into fixed-size
// frames and drives one kinematic processor per axis.
package pipeline

import (
	"fmt"

	"github.com/TranDung6129/real-time-displacement/internal/kinematics"
	"github.com/TranDung6129/real-time-displacement/internal/wit"
)

// GravityMS2 converts acceleration from g to m/s².
const GravityMS2 = 9.80665

// Axis identifies one of the three sensor axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

var axisNames = [3]string{"x", "y", "z"}

func (a Axis) String() string {
	if a < AxisX || a > AxisZ {
		return "unknown"
	}
	return axisNames[a]
}

// Axes lists all axes in order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// Segment holds the per-frame output of one axis.
type Segment struct {
	Disp []float64 `json:"disp"`
	Vel  []float64 `json:"vel"`
	Acc  []float64 `json:"acc"`
}

// Result is emitted once per completed frame.
type Result struct {
	Time     []float64  `json:"time"` // plot time for the segment, seconds since start
	Axes     [3]Segment `json:"axes"`
	WarmedUp bool       `json:"warmedUp"`
}

// Options configures a Pipeline. Zero values fall back to the defaults
// the sensor rig ships with.
type Options struct {
	Dt                  float64
	SampleFrameSize     int
	CalcFrameMultiplier int
	ForgettingVel       float64
	ForgettingDisp      float64
	WarmupFrames        int
	HistoryLimit        int // bounded processed history, points per series
	SpectralPoints      int // raw-acceleration tail kept for spectral analysis
}

func (o *Options) applyDefaults() {
	if o.SampleFrameSize == 0 {
		o.SampleFrameSize = kinematics.DefaultSampleFrameSize
	}
	if o.CalcFrameMultiplier == 0 {
		o.CalcFrameMultiplier = kinematics.DefaultCalcFrameMultiplier
	}
	if o.ForgettingVel == 0 {
		o.ForgettingVel = kinematics.DefaultForgettingFactor
	}
	if o.ForgettingDisp == 0 {
		o.ForgettingDisp = kinematics.DefaultForgettingFactor
	}
	if o.HistoryLimit == 0 {
		o.HistoryLimit = 2000
	}
	if o.SpectralPoints == 0 {
		o.SpectralPoints = 512
	}
}

// History is a bounded record of processed output for downstream
// consumers (plotting, export, statistics).
type History struct {
	Time []float64
	Acc  [3][]float64
	Vel  [3][]float64
	Disp [3][]float64
}

// Pipeline converts raw samples (g) to m/s², cuts them into frames and
// feeds three independent per-axis kinematic processors. Not safe for
// concurrent use; one goroutine owns it.
type Pipeline struct {
	opts Options

	procs   [3]*kinematics.KinematicProcessor
	pending [3][]float64

	rawAcc  [3][]float64 // recent raw acceleration (m/s²) for spectral analysis
	history History

	plotTime float64
}

// New validates the options and builds the three axis processors.
func New(opts Options) (*Pipeline, error) {
	opts.applyDefaults()

	p := &Pipeline{opts: opts}
	for _, a := range Axes {
		proc, err := kinematics.NewKinematicProcessor(opts.Dt, opts.SampleFrameSize,
			opts.CalcFrameMultiplier, opts.ForgettingVel, opts.ForgettingDisp, opts.WarmupFrames)
		if err != nil {
			return nil, fmt.Errorf("pipeline: axis %s processor: %w", a, err)
		}
		p.procs[a] = proc
	}
	return p, nil
}

// Dt returns the sampling interval.
func (p *Pipeline) Dt() float64 { return p.opts.Dt }

// SampleFrameSize returns the per-frame sample count.
func (p *Pipeline) SampleFrameSize() int { return p.opts.SampleFrameSize }

// Push converts one decoded sample and accumulates it. When a full
// frame is complete it runs all three processors and returns a Result.
func (p *Pipeline) Push(s wit.Sample) (*Result, bool) {
	// Unit conversion: g to m/s², with gravity removed from Z so a
	// resting sensor integrates to zero.
	converted := [3]float64{
		s.AccX * GravityMS2,
		s.AccY * GravityMS2,
		(s.AccZ - 1.0) * GravityMS2,
	}
	for _, a := range Axes {
		p.pending[a] = append(p.pending[a], converted[a])
		p.rawAcc[a] = appendBounded(p.rawAcc[a], converted[a], 2*p.opts.SpectralPoints)
	}

	if len(p.pending[AxisX]) < p.opts.SampleFrameSize {
		return nil, false
	}

	res := &Result{}
	n := p.opts.SampleFrameSize
	for _, a := range Axes {
		frame := p.pending[a][:n]
		disp, vel, acc := p.procs[a].ProcessFrame(frame)
		p.pending[a] = p.pending[a][n:]
		res.Axes[a] = Segment{Disp: disp, Vel: vel, Acc: acc}
	}
	res.WarmedUp = p.WarmedUp()

	res.Time = make([]float64, n)
	for i := range res.Time {
		res.Time[i] = p.plotTime + float64(i)*p.opts.Dt
	}
	p.plotTime += float64(n) * p.opts.Dt

	p.appendHistory(res)
	return res, true
}

// WarmedUp reports whether the axis processors have passed warm-up.
// All three ingest frames in lockstep, so checking one is enough.
func (p *Pipeline) WarmedUp() bool { return p.procs[AxisX].IsWarmedUp() }

// Processor exposes the per-axis processor, e.g. for a full-window
// snapshot via CumulativeResults.
func (p *Pipeline) Processor(a Axis) *kinematics.KinematicProcessor { return p.procs[a] }

// RawAcceleration returns a copy of the recent raw acceleration tail
// for one axis, in m/s².
func (p *Pipeline) RawAcceleration(a Axis) []float64 {
	out := make([]float64, len(p.rawAcc[a]))
	copy(out, p.rawAcc[a])
	return out
}

// History returns a copy of the bounded processed history.
func (p *Pipeline) History() History {
	h := History{Time: copyFloats(p.history.Time)}
	for _, a := range Axes {
		h.Acc[a] = copyFloats(p.history.Acc[a])
		h.Vel[a] = copyFloats(p.history.Vel[a])
		h.Disp[a] = copyFloats(p.history.Disp[a])
	}
	return h
}

// Reset clears pending samples, history and the plot clock, and resets
// all three processors.
func (p *Pipeline) Reset() {
	for _, a := range Axes {
		p.procs[a].Reset()
		p.pending[a] = nil
		p.rawAcc[a] = nil
		p.history.Acc[a] = nil
		p.history.Vel[a] = nil
		p.history.Disp[a] = nil
	}
	p.history.Time = nil
	p.plotTime = 0
}

func (p *Pipeline) appendHistory(res *Result) {
	limit := p.opts.HistoryLimit
	p.history.Time = appendBoundedSlice(p.history.Time, res.Time, limit)
	for _, a := range Axes {
		p.history.Acc[a] = appendBoundedSlice(p.history.Acc[a], res.Axes[a].Acc, limit)
		p.history.Vel[a] = appendBoundedSlice(p.history.Vel[a], res.Axes[a].Vel, limit)
		p.history.Disp[a] = appendBoundedSlice(p.history.Disp[a], res.Axes[a].Disp, limit)
	}
}

func appendBounded(s []float64, v float64, limit int) []float64 {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func appendBoundedSlice(s, vs []float64, limit int) []float64 {
	s = append(s, vs...)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

func copyFloats(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
