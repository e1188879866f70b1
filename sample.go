package patch

// SampleStatus is returned by a per-sample module. Negative means keep
// going, zero means done, a positive value is the remaining tail length in
// samples and must never increase between calls.
type SampleStatus int

const (
	// SampleContinue means the module must keep being invoked.
	SampleContinue SampleStatus = -1
	// SampleDone means the module has reached silence.
	SampleDone SampleStatus = 0
)

// Tail reports a finite decay of n samples left to render.
func Tail(n int) SampleStatus {
	return SampleStatus(n)
}

// SampleModule is the sample-granular processing contract. It is driven
// through the block contract by the PerSample adapter, which gathers one
// frame per sample, applies parameter events at their timestamps and
// scatters the resulting output frame.
type SampleModule interface {
	// SampleSockets declares the frame widths: audio inputs, audio
	// outputs and parameters.
	SampleSockets() (audioIn, audioOut, params int)
	// Prepare mirrors Module.Prepare.
	Prepare(StreamData) error
	// ProcessSample consumes one input frame under the current parameter
	// values and fills one output frame.
	ProcessSample(in, params, out []float64) SampleStatus
}

type sampleAdapter struct {
	inner SampleModule

	in      []float64
	out     []float64
	params  []float64
	cursors []int
}

// PerSample adapts a per-sample module to the block contract. Each
// parameter input socket feeds one slot of the params frame; an event at
// sample s takes effect starting with sample s.
func PerSample(m SampleModule) Module {
	return &sampleAdapter{inner: m}
}

func (a *sampleAdapter) Sockets() Sockets {
	audioIn, audioOut, params := a.inner.SampleSockets()
	return Sockets{
		Inputs:  SocketCount{Audio: audioIn, Param: params},
		Outputs: SocketCount{Audio: audioOut},
	}
}

func (a *sampleAdapter) Prepare(sd StreamData) error {
	audioIn, audioOut, params := a.inner.SampleSockets()
	a.in = make([]float64, audioIn)
	a.out = make([]float64, audioOut)
	a.params = make([]float64, params)
	a.cursors = make([]int, params)
	return a.inner.Prepare(sd)
}

func (a *sampleAdapter) Process(ctx *Context) (Status, error) {
	stream := ctx.Stream()
	for p := range a.cursors {
		a.cursors[p] = 0
	}

	status := SampleContinue
	for i := 0; i < stream.BufferSize; i++ {
		for p := range a.params {
			events := ctx.ParamIn(p).Events()
			for a.cursors[p] < len(events) && events[a.cursors[p]].Sample <= i {
				a.params[p] = events[a.cursors[p]].Value
				a.cursors[p]++
			}
		}
		for j := range a.in {
			a.in[j] = ctx.AudioIn(j)[i]
		}
		status = a.inner.ProcessSample(a.in, a.params, a.out)
		for j := range a.out {
			ctx.AudioOut(j)[i] = a.out[j]
		}
	}

	if status == SampleDone {
		return Done, nil
	}
	return Continue, nil
}

func (a *sampleAdapter) Reset() {
	if r, ok := a.inner.(Resetter); ok {
		r.Reset()
	}
}

func (a *sampleAdapter) Latency() float64 {
	if l, ok := a.inner.(Latencier); ok {
		return l.Latency()
	}
	return 0
}
