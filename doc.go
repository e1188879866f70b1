/*
Package patch compiles graphs of signal-processing modules into staged
execution plans and runs them block by block.

Concept

A module is a unit of processing with typed sockets: audio sockets carry
one sample per frame, param sockets carry sparse timestamped float events,
note sockets carry discrete note events. Modules are wired into a directed
graph; the compiler turns the graph plus one requested output into a
Schedule — a linear sequence of stages where all invocations within a stage
are mutually independent and every producer runs strictly before its
consumers.

Building and compiling

A graph starts with a builder. Modules are added by name, external
terminals declare where signal enters and leaves, and connections join
typed sockets:

    b := patch.NewBuilder()
    in := b.AddInput(patch.Audio)
    delay := b.AddModule("delay", patch.DelayAudio(64))
    out := b.AddOutput(patch.Audio)

    b.ConnectInput(in, delay.In(patch.Audio, 0))
    b.ConnectOutput(delay.Out(patch.Audio, 0), out)

    s, err := b.Compile(out)

Compile validates the graph: cycles, unconnected inputs and a dangling
requested output are reported here, before any audio is produced. Multiple
connections into one input are summed at runtime.

Processing

A schedule must be prepared for a stream configuration before it can run.
Prepare allocates all storage; Process never allocates, locks or blocks:

    err = s.Prepare(patch.StreamData{SampleRate: 48000, BufferSize: 64})
    status, err := s.Process(inputs, outputs)

Process returns Done once every module has reported Done; pruning a done
module from the plan is done by recompiling, never mid-block.

Modules implement the block contract directly, or the per-sample contract
driven through the PerSample adapter. Data leaves the real-time thread only
through the lock-free ring buffer, exposed here by the Extract module.
*/
package patch
