package patch

import (
	"github.com/go-audio/audio"

	"github.com/modular-dsp/patch/ring"
)

// Extract taps its single audio input into a ring buffer for a
// non-real-time consumer, e.g. a UI meter or an analysis thread. The module
// has no outputs and does no pass-through; route the signal onwards
// separately. Until armed with a producer it is a no-op.
type Extract struct {
	tx *ring.Producer[float64]
}

// NewExtract returns an extract module and the consumer-side tap reading
// the most recent capacity samples.
func NewExtract(capacity int) (*Extract, *Tap) {
	producer, consumer := ring.New[float64](capacity)
	e := &Extract{}
	e.Connect(producer)
	return e, &Tap{consumer: consumer}
}

// Connect arms the module with the producer side of a ring buffer. All
// incoming audio is sent there with overriding pushes, so a slow consumer
// loses the oldest samples instead of stalling the block.
func (e *Extract) Connect(producer *ring.Producer[float64]) {
	e.tx = producer
}

func (e *Extract) Sockets() Sockets {
	return Sockets{Inputs: SocketCount{Audio: 1}}
}

func (e *Extract) Prepare(StreamData) error {
	return nil
}

func (e *Extract) Process(ctx *Context) (Status, error) {
	if e.tx != nil {
		e.tx.PushSliceOverriding(ctx.AudioIn(0))
	}
	return Continue, nil
}

// Tap is the consumer side of an Extract module. It must be polled from a
// single goroutine, which may run concurrently with the processing thread.
type Tap struct {
	consumer *ring.Consumer[float64]
}

// Frames drains the buffered samples into a mono FloatBuffer tagged with
// the given sample rate. It returns nil when no samples arrived since the
// last call.
func (t *Tap) Frames(sampleRate int) *audio.FloatBuffer {
	data := make([]float64, 0, t.consumer.Len())
	t.consumer.Drain(func(v float64) bool {
		data = append(data, v)
		return true
	})
	if len(data) == 0 {
		return nil
	}
	return &audio.FloatBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data: data,
	}
}
