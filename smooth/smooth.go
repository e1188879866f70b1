// Package smooth provides parameter smoothers that turn stepwise control
// changes into per-sample ramps, so an abrupt target change never produces
// an audible click.
package smooth

import "math"

// epsilon is the distance below which the exponential smoother reports
// convergence.
const epsilon = 1e-6

// Smoother generates one smoothed value per audio sample.
type Smoother interface {
	// NextValue returns the next interpolated value and advances the
	// internal progress.
	NextValue() float64
	// CurrentValue returns the value at the current progress without
	// advancing.
	CurrentValue() float64
	// SetTarget captures the current interpolated value as the new
	// ramp's start and begins a fresh ramp towards target.
	SetTarget(target float64)
	// HasConverged reports whether further NextValue calls would keep
	// returning the same value.
	HasConverged() bool
	// SetSampleRate updates the sample rate the ramp timing is derived
	// from.
	SetSampleRate(sampleRate float64)
}

// Linear ramps from the start value to the target at a constant slope,
// converging after exactly ceil(sampleRate/rampTime) samples. Progress is
// counted in whole samples so the convergence point never drifts with
// accumulated rounding error.
type Linear struct {
	initial    float64
	target     float64
	n          int
	total      int
	rampTime   float64
	sampleRate float64
}

// NewLinear returns a linear smoother resting at initial.
func NewLinear(sampleRate, rampTime, initial float64) *Linear {
	l := &Linear{
		initial:  initial,
		target:   initial,
		rampTime: rampTime,
	}
	l.SetSampleRate(sampleRate)
	l.n = l.total
	return l
}

func (l *Linear) SetSampleRate(sampleRate float64) {
	f := l.progress()
	l.sampleRate = sampleRate
	if sampleRate > 0 && l.rampTime > 0 {
		l.total = int(math.Ceil(sampleRate / l.rampTime))
	} else {
		l.total = 1
	}
	l.n = int(f * float64(l.total))
}

func (l *Linear) progress() float64 {
	if l.n >= l.total {
		return 1
	}
	return float64(l.n) / float64(l.total)
}

func (l *Linear) CurrentValue() float64 {
	return l.initial + (l.target-l.initial)*l.progress()
}

func (l *Linear) NextValue() float64 {
	if l.HasConverged() {
		return l.target
	}
	out := l.CurrentValue()
	l.n++
	return out
}

func (l *Linear) HasConverged() bool { return l.n >= l.total }

func (l *Linear) SetTarget(target float64) {
	l.initial = l.NextValue()
	l.target = target
	l.n = 0
}

// Exp ramps towards the target along an exponential decay, covering a fixed
// fraction of the remaining distance every sample. It never reaches the
// target exactly but is reported converged once within epsilon.
type Exp struct {
	last       float64
	target     float64
	coeff      float64
	timeConst  float64
	sampleRate float64
}

// NewExp returns an exponential smoother resting at initial with the given
// time constant in seconds.
func NewExp(sampleRate, timeConst, initial float64) *Exp {
	e := &Exp{
		last:      initial,
		target:    initial,
		timeConst: timeConst,
	}
	e.SetSampleRate(sampleRate)
	return e
}

func (e *Exp) SetSampleRate(sampleRate float64) {
	e.sampleRate = sampleRate
	if sampleRate > 0 {
		e.coeff = math.Min(e.timeConst/sampleRate, 1)
	} else {
		e.coeff = 1
	}
}

func (e *Exp) CurrentValue() float64 { return e.last }

func (e *Exp) NextValue() float64 {
	e.last += e.coeff * (e.target - e.last)
	return e.last
}

func (e *Exp) HasConverged() bool {
	return math.Abs(e.last-e.target) < epsilon
}

func (e *Exp) SetTarget(target float64) { e.target = target }
