package patch

import (
	"fmt"

	"github.com/modular-dsp/patch/event"
)

// SocketType is a kind of connection point on a module.
type SocketType int

const (
	// Audio sockets carry one sample value per frame.
	Audio SocketType = iota
	// Param sockets carry sparse timestamped float events.
	Param
	// Note sockets carry sparse timestamped note events.
	Note

	numSocketTypes
)

func (t SocketType) String() string {
	switch t {
	case Audio:
		return "audio"
	case Param:
		return "param"
	case Note:
		return "note"
	}
	return fmt.Sprintf("SocketType(%d)", int(t))
}

// SocketCount holds a number of sockets per socket type, indexed by
// SocketType.
type SocketCount [numSocketTypes]int

// Sockets declares the connection points of a module.
type Sockets struct {
	Inputs  SocketCount
	Outputs SocketCount
}

// StreamData is the block-processing configuration delivered on stream
// (re)configuration, before the next process call.
type StreamData struct {
	BPM        float64
	SampleRate float64
	BufferSize int
}

// Status is returned by a module after processing a block.
type Status int

const (
	// Continue means the module must be re-invoked next block.
	Continue Status = iota
	// Done signals the module has reached silence and may be pruned from
	// future schedules.
	Done
)

// ParamBuffer holds parameter events at control rate.
type ParamBuffer = event.Buffer[float64]

// NoteBuffer holds note events.
type NoteBuffer = event.Buffer[NoteEvent]

// Module is a unit of processing invoked once per block. Implementations
// declare their socket counts once; reading or writing a socket index not
// declared by Sockets is a contract violation and panics.
//
// A module must fully write every declared audio output each block. Event
// outputs are cleared by the engine before the module runs.
type Module interface {
	// Sockets declares the module's connection points. It must be
	// constant for the lifetime of the module.
	Sockets() Sockets
	// Prepare is called before the first block and again on every stream
	// reconfiguration. Allocation belongs here, not in Process.
	Prepare(StreamData) error
	// Process reads its inputs and writes its outputs through ctx.
	Process(ctx *Context) (Status, error)
}

// Resetter is implemented by modules that can drop accumulated internal
// state, e.g. delay history.
type Resetter interface {
	Reset()
}

// Latencier is implemented by modules that introduce processing latency,
// reported in samples.
type Latencier interface {
	Latency() float64
}

// binding maps a module's declared socket indices onto engine storage
// indices.
type binding struct {
	ins  [numSocketTypes][]int
	outs [numSocketTypes][]int
}

// Context is a module's per-invocation view of the engine storage. Socket
// accessors are indexed by the module's own declared socket numbers.
type Context struct {
	stream StreamData
	store  *storage
	bind   binding
}

// Stream returns the active block-processing configuration.
func (c *Context) Stream() StreamData {
	return c.stream
}

// AudioIn returns the samples of audio input i.
func (c *Context) AudioIn(i int) []float64 {
	return c.store.audio[c.in(Audio, i)]
}

// AudioOut returns the writable samples of audio output i.
func (c *Context) AudioOut(i int) []float64 {
	return c.store.audio[c.out(Audio, i)]
}

// ParamIn returns the event buffer of parameter input i.
func (c *Context) ParamIn(i int) *ParamBuffer {
	return c.store.params[c.in(Param, i)]
}

// ParamOut returns the writable event buffer of parameter output i.
func (c *Context) ParamOut(i int) *ParamBuffer {
	return c.store.params[c.out(Param, i)]
}

// NoteIn returns the event buffer of note input i.
func (c *Context) NoteIn(i int) *NoteBuffer {
	return c.store.notes[c.in(Note, i)]
}

// NoteOut returns the writable event buffer of note output i.
func (c *Context) NoteOut(i int) *NoteBuffer {
	return c.store.notes[c.out(Note, i)]
}

func (c *Context) in(typ SocketType, i int) int {
	sockets := c.bind.ins[typ]
	if i < 0 || i >= len(sockets) {
		panic(fmt.Sprintf("patch: %s input %d out of %d declared", typ, i, len(sockets)))
	}
	return sockets[i]
}

func (c *Context) out(typ SocketType, i int) int {
	sockets := c.bind.outs[typ]
	if i < 0 || i >= len(sockets) {
		panic(fmt.Sprintf("patch: %s output %d out of %d declared", typ, i, len(sockets)))
	}
	return sockets[i]
}
