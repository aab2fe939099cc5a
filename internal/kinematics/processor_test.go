package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, sampleFrameSize, calcFrameMultiplier, warmupFrames int) *KinematicProcessor {
	t.Helper()
	p, err := NewKinematicProcessor(0.01, sampleFrameSize, calcFrameMultiplier,
		DefaultForgettingFactor, DefaultForgettingFactor, warmupFrames)
	require.NoError(t, err)
	return p
}

func TestNewKinematicProcessorValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		dt         float64
		frameSize  int
		multiplier int
		qVel       float64
		qDisp      float64
		warmup     int
	}{
		{"zero dt", 0, 4, 2, 0.98, 0.98, 5},
		{"negative dt", -1, 4, 2, 0.98, 0.98, 5},
		{"zero frame size", 0.01, 0, 2, 0.98, 0.98, 5},
		{"zero multiplier", 0.01, 4, 0, 0.98, 0.98, 5},
		{"bad velocity forgetting", 0.01, 4, 2, 1.5, 0.98, 5},
		{"bad displacement forgetting", 0.01, 4, 2, 0.98, 0, 5},
		{"negative warmup", 0.01, 4, 2, 0.98, 0.98, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewKinematicProcessor(tc.dt, tc.frameSize, tc.multiplier, tc.qVel, tc.qDisp, tc.warmup)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestProcessorInitialState(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 5)

	assert.Equal(t, 4, p.SampleFrameSize())
	assert.Equal(t, 8, p.CalcFrameSize())
	assert.Zero(t, p.FrameCount())
	assert.False(t, p.IsWarmedUp())

	timeVector, disp, vel, acc := p.CumulativeResults()
	require.Len(t, timeVector, 8)
	for i, tv := range timeVector {
		assert.InDelta(t, float64(i)*0.01, tv, 1e-12)
	}
	assert.Equal(t, make([]float64, 8), disp)
	assert.Equal(t, make([]float64, 8), vel)
	assert.Equal(t, make([]float64, 8), acc)
}

func TestProcessFrameEmptyInputIsSentinel(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 5)

	// Build up some state first.
	p.ProcessFrame([]float64{0.1, 0.2, 0.3, 0.4})
	_, dispBefore, velBefore, accBefore := p.CumulativeResults()
	countBefore := p.FrameCount()

	disp, vel, acc := p.ProcessFrame(nil)
	for _, seg := range [][]float64{disp, vel, acc} {
		require.Len(t, seg, 4)
		for i, v := range seg {
			assert.True(t, math.IsNaN(v), "index %d", i)
		}
	}

	// No state mutation: counters, warm-up and buffers are untouched.
	assert.Equal(t, countBefore, p.FrameCount())
	assert.False(t, p.IsWarmedUp())
	_, dispAfter, velAfter, accAfter := p.CumulativeResults()
	assert.Equal(t, dispBefore, dispAfter)
	assert.Equal(t, velBefore, velAfter)
	assert.Equal(t, accBefore, accAfter)
}

func TestProcessFrameZeroInputStaysAtZero(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 5)

	zero := make([]float64, 4)
	for i := 0; i < 10; i++ {
		disp, vel, acc := p.ProcessFrame(zero)
		require.Len(t, disp, 4)
		require.Len(t, vel, 4)
		require.Len(t, acc, 4)
		for j := 0; j < 4; j++ {
			assert.InDelta(t, 0, disp[j], 1e-9)
			assert.InDelta(t, 0, vel[j], 1e-9)
			assert.InDelta(t, 0, acc[j], 1e-9)
		}
	}
	assert.True(t, p.IsWarmedUp())
}

func TestWarmupBoundary(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 5)

	frame := []float64{0.1, -0.1, 0.2, -0.2}
	for i := 1; i <= 4; i++ {
		p.ProcessFrame(frame)
		assert.False(t, p.IsWarmedUp(), "after %d frames", i)
	}
	p.ProcessFrame(frame)
	assert.True(t, p.IsWarmedUp(), "after 5 frames")
}

func TestZeroWarmupIsImmediatelyWarm(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 0)
	assert.True(t, p.IsWarmedUp())
}

func TestOverlongFrameTruncates(t *testing.T) {
	t.Parallel()
	truncating := newTestProcessor(t, 4, 2, 5)
	exact := newTestProcessor(t, 4, 2, 5)

	dispA, velA, accA := truncating.ProcessFrame([]float64{1, 2, 3, 4, 5})
	dispB, velB, accB := exact.ProcessFrame([]float64{1, 2, 3, 4})

	assert.Equal(t, dispB, dispA)
	assert.Equal(t, velB, velA)
	assert.Equal(t, accB, accA)
}

func TestShortFramePadsWithLastValue(t *testing.T) {
	t.Parallel()
	padding := newTestProcessor(t, 4, 2, 5)
	exact := newTestProcessor(t, 4, 2, 5)

	dispA, velA, accA := padding.ProcessFrame([]float64{1, 2})
	dispB, velB, accB := exact.ProcessFrame([]float64{1, 2, 2, 2})

	assert.Equal(t, dispB, dispA)
	assert.Equal(t, velB, velA)
	assert.Equal(t, accB, accA)
}

func TestBufferRotationKeepsNewestSamples(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 2, 2, 0)

	p.ProcessFrame([]float64{1, 2})
	p.ProcessFrame([]float64{3, 4})
	p.ProcessFrame([]float64{5, 6})

	_, _, _, acc := p.CumulativeResults()
	assert.Equal(t, []float64{3, 4, 5, 6}, acc)
}

func TestReturnedSegmentIsNewestWindowTail(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 3, 4, 0)

	_, _, acc := p.ProcessFrame([]float64{0.7, 0.8, 0.9})
	assert.Equal(t, []float64{0.7, 0.8, 0.9}, acc)
}

func TestProcessorReset(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 5)

	frame := []float64{0.5, -0.3, 0.2, 0.9}
	for i := 0; i < 6; i++ {
		p.ProcessFrame(frame)
	}
	require.True(t, p.IsWarmedUp())

	p.Reset()
	assert.Zero(t, p.FrameCount())
	assert.False(t, p.IsWarmedUp())
	_, disp, vel, acc := p.CumulativeResults()
	assert.Equal(t, make([]float64, 8), disp)
	assert.Equal(t, make([]float64, 8), vel)
	assert.Equal(t, make([]float64, 8), acc)

	// After reset the processor replays exactly like a fresh instance.
	fresh := newTestProcessor(t, 4, 2, 5)
	for i := 0; i < 3; i++ {
		dispA, velA, accA := p.ProcessFrame(frame)
		dispB, velB, accB := fresh.ProcessFrame(frame)
		assert.Equal(t, dispB, dispA, "frame %d", i)
		assert.Equal(t, velB, velA, "frame %d", i)
		assert.Equal(t, accB, accA, "frame %d", i)
	}
}

func TestCumulativeResultsAreCopies(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, 4, 2, 0)
	p.ProcessFrame([]float64{1, 2, 3, 4})

	_, disp, vel, acc := p.CumulativeResults()
	disp[0] = 999
	vel[0] = 999
	acc[0] = 999

	_, disp2, vel2, acc2 := p.CumulativeResults()
	assert.NotEqual(t, 999.0, disp2[0])
	assert.NotEqual(t, 999.0, vel2[0])
	assert.NotEqual(t, 999.0, acc2[0])
}

func TestIndependentAxesDoNotInteract(t *testing.T) {
	t.Parallel()

	// Two instances fed different streams behave like one instance each.
	x := newTestProcessor(t, 4, 2, 0)
	y := newTestProcessor(t, 4, 2, 0)
	ref := newTestProcessor(t, 4, 2, 0)

	frameX := []float64{0.1, 0.2, 0.3, 0.4}
	frameY := []float64{-1, -2, -3, -4}

	var disp, vel, acc []float64
	for i := 0; i < 4; i++ {
		disp, vel, acc = x.ProcessFrame(frameX)
		y.ProcessFrame(frameY)
	}
	var dispRef, velRef, accRef []float64
	for i := 0; i < 4; i++ {
		dispRef, velRef, accRef = ref.ProcessFrame(frameX)
	}
	assert.Equal(t, dispRef, disp)
	assert.Equal(t, velRef, vel)
	assert.Equal(t, accRef, acc)
}
