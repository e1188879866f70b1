package patch

import (
	"math"

	"github.com/modular-dsp/patch/event"
)

// EventDelay shifts events by a fixed whole number of samples, staging
// events whose shifted time falls beyond the current block until the block
// they belong to.
type EventDelay[T any] struct {
	amount  int
	staging *event.Buffer[T]
	scratch []event.Timestamped[T]
}

// NewEventDelay returns a delay of amount samples whose staging buffer
// holds up to capacity pending events.
func NewEventDelay[T any](capacity, amount int) *EventDelay[T] {
	return &EventDelay[T]{
		amount:  amount,
		staging: event.NewBuffer[T](capacity),
		scratch: make([]event.Timestamped[T], 0, capacity),
	}
}

// Process shifts all events of in by the delay amount. Events landing
// inside the current block of blockLen samples are pushed to out; the rest
// are staged for later blocks. Staged events from earlier blocks that now
// fall inside the block are flushed first. Overflow of out or the staging
// buffer is returned as event.ErrOverflow; out must not be relied upon on
// failure.
func (d *EventDelay[T]) Process(blockLen int, in, out *event.Buffer[T]) error {
	// Flush staged events that fall inside this block; what remains is
	// re-staged relative to the next block.
	d.scratch = d.scratch[:0]
	for _, e := range d.staging.Events() {
		if e.Sample < blockLen {
			if err := out.Push(e.Sample, e.Value); err != nil {
				return err
			}
		} else {
			d.scratch = append(d.scratch, e)
		}
	}
	d.staging.Clear()
	for _, e := range d.scratch {
		if err := d.staging.Push(e.Sample-blockLen, e.Value); err != nil {
			return err
		}
	}

	for _, e := range in.Events() {
		shifted := e.Sample + d.amount
		if shifted < blockLen {
			if err := out.Push(shifted, e.Value); err != nil {
				return err
			}
		} else if err := d.staging.Push(shifted-blockLen, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops all staged events.
func (d *EventDelay[T]) Reset() {
	d.staging.Clear()
}

// AudioDelay delays an audio stream by a possibly fractional number of
// samples, interpolating linearly between the two history samples that
// bracket the delayed read position. History starts zero-filled, which
// shapes only the first ceil(d) output samples.
type AudioDelay struct {
	history []float64
	pos     int
	whole   int
	fract   float64
}

// NewAudioDelay returns a delay of d samples, d >= 0.
func NewAudioDelay(d float64) *AudioDelay {
	whole := int(math.Ceil(d))
	return &AudioDelay{
		history: make([]float64, whole+1),
		whole:   whole,
		// Interpolation weight towards the newer bracket sample.
		fract: float64(whole) - d,
	}
}

// ProcessSample produces the delayed output for one input sample and
// appends the input to the history.
func (d *AudioDelay) ProcessSample(in float64) float64 {
	older := d.at(in, d.whole)
	newer := d.at(in, d.whole-1)
	out := older + (newer-older)*d.fract

	d.history[d.pos] = in
	d.pos++
	if d.pos == len(d.history) {
		d.pos = 0
	}
	return out
}

// at returns the sample k positions back; k == 0 is the incoming sample
// that has not been appended yet.
func (d *AudioDelay) at(in float64, k int) float64 {
	if k <= 0 {
		return in
	}
	n := len(d.history)
	return d.history[((d.pos-k)%n+n)%n]
}

// Process applies the delay to a whole block.
func (d *AudioDelay) Process(in, out []float64) {
	for i, v := range in {
		out[i] = d.ProcessSample(v)
	}
}

// Reset zero-fills the history.
func (d *AudioDelay) Reset() {
	for i := range d.history {
		d.history[i] = 0
	}
	d.pos = 0
}

// Latency reports the delay amount in samples.
func (d *AudioDelay) Latency() float64 {
	return float64(d.whole) - d.fract
}

type audioDelayModule struct {
	delay *AudioDelay
}

// DelayAudio returns a module delaying its single audio input by d samples.
func DelayAudio(d float64) Module {
	return &audioDelayModule{delay: NewAudioDelay(d)}
}

func (m *audioDelayModule) Sockets() Sockets {
	return Sockets{
		Inputs:  SocketCount{Audio: 1},
		Outputs: SocketCount{Audio: 1},
	}
}

func (m *audioDelayModule) Prepare(StreamData) error {
	m.delay.Reset()
	return nil
}

func (m *audioDelayModule) Process(ctx *Context) (Status, error) {
	m.delay.Process(ctx.AudioIn(0), ctx.AudioOut(0))
	return Continue, nil
}

func (m *audioDelayModule) Reset() { m.delay.Reset() }

func (m *audioDelayModule) Latency() float64 { return m.delay.Latency() }

type paramDelayModule struct {
	amount int
	delay  *EventDelay[float64]
}

// DelayParams returns a module delaying its single param input by amount
// samples.
func DelayParams(amount int) Module {
	return &paramDelayModule{amount: amount}
}

func (m *paramDelayModule) Sockets() Sockets {
	return Sockets{
		Inputs:  SocketCount{Param: 1},
		Outputs: SocketCount{Param: 1},
	}
}

func (m *paramDelayModule) Prepare(sd StreamData) error {
	m.delay = NewEventDelay[float64](sd.BufferSize, m.amount)
	return nil
}

func (m *paramDelayModule) Process(ctx *Context) (Status, error) {
	err := m.delay.Process(ctx.Stream().BufferSize, ctx.ParamIn(0), ctx.ParamOut(0))
	return Continue, err
}

func (m *paramDelayModule) Reset() {
	if m.delay != nil {
		m.delay.Reset()
	}
}

type noteDelayModule struct {
	amount int
	delay  *EventDelay[NoteEvent]
}

// DelayNotes returns a module delaying its single note input by amount
// samples.
func DelayNotes(amount int) Module {
	return &noteDelayModule{amount: amount}
}

func (m *noteDelayModule) Sockets() Sockets {
	return Sockets{
		Inputs:  SocketCount{Note: 1},
		Outputs: SocketCount{Note: 1},
	}
}

func (m *noteDelayModule) Prepare(sd StreamData) error {
	m.delay = NewEventDelay[NoteEvent](sd.BufferSize, m.amount)
	return nil
}

func (m *noteDelayModule) Process(ctx *Context) (Status, error) {
	err := m.delay.Process(ctx.Stream().BufferSize, ctx.NoteIn(0), ctx.NoteOut(0))
	return Continue, err
}

func (m *noteDelayModule) Reset() {
	if m.delay != nil {
		m.delay.Reset()
	}
}
