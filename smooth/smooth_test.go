package smooth_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modular-dsp/patch/smooth"
)

func TestLinearRamp(t *testing.T) {
	l := smooth.NewLinear(8, 2, 0)
	assert.True(t, l.HasConverged())
	assert.Equal(t, 0.0, l.NextValue())

	l.SetTarget(1)
	assert.False(t, l.HasConverged())

	// ceil(8/2) = 4 calls to converge.
	var values []float64
	for i := 0; i < 4; i++ {
		values = append(values, l.NextValue())
	}
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, values)
	assert.True(t, l.HasConverged())
	assert.Equal(t, 1.0, l.NextValue())
	assert.Equal(t, 1.0, l.NextValue())
}

func TestLinearRetarget(t *testing.T) {
	l := smooth.NewLinear(4, 2, 0)
	l.SetTarget(1)
	l.NextValue()
	l.NextValue()

	// Retargeting restarts the ramp from the current value.
	mid := l.CurrentValue()
	l.SetTarget(0)
	assert.False(t, l.HasConverged())
	assert.LessOrEqual(t, l.NextValue(), mid)
	for !l.HasConverged() {
		l.NextValue()
	}
	assert.Equal(t, 0.0, l.NextValue())
}

func TestLinearConvergesAfterExactCallCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("converged after ceil(sampleRate/rampTime) calls", prop.ForAll(
		func(sampleRate, rampTime, target float64) bool {
			l := smooth.NewLinear(sampleRate, rampTime, 0)
			l.SetTarget(target)
			calls := int(math.Ceil(sampleRate / rampTime))
			for i := 0; i < calls-1; i++ {
				l.NextValue()
				if l.HasConverged() {
					return false
				}
			}
			l.NextValue()
			return l.HasConverged() && l.NextValue() == target
		},
		gen.Float64Range(1, 96000),
		gen.Float64Range(0.001, 10),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}

func TestExpDistanceDecreases(t *testing.T) {
	e := smooth.NewExp(100, 10, 0)
	e.SetTarget(1)

	distance := 1.0
	for i := 0; i < 1000 && !e.HasConverged(); i++ {
		e.NextValue()
		next := math.Abs(1 - e.CurrentValue())
		require.Less(t, next, distance)
		distance = next
	}
	assert.True(t, e.HasConverged())
}

func TestExpRetarget(t *testing.T) {
	e := smooth.NewExp(100, 50, 1)
	assert.True(t, e.HasConverged())
	assert.Equal(t, 1.0, e.CurrentValue())

	e.SetTarget(-1)
	assert.False(t, e.HasConverged())
	// First step covers timeConst/sampleRate of the remaining distance.
	assert.InDelta(t, 0.0, e.NextValue(), 1e-12)
}

func TestSetSampleRate(t *testing.T) {
	l := smooth.NewLinear(8, 2, 0)
	l.SetSampleRate(4)
	l.SetTarget(1)
	for i := 0; i < 2; i++ {
		l.NextValue()
	}
	assert.True(t, l.HasConverged(), "ramp should track the updated rate")
}
