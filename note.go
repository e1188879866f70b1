package patch

// NoteKey uniquely identifies a sounding note.
type NoteKey struct {
	Channel uint8
	Note    uint8
}

// NoteKind discriminates note events.
type NoteKind uint8

const (
	// KeyOn is a keypress; the event value is the velocity.
	KeyOn NoteKind = iota
	// KeyOff is a key release; the event value is the release velocity.
	KeyOff
	// Pressure is per-key pressure (polyphonic aftertouch).
	Pressure
	// Timbre is a per-note continuous timbre controller.
	Timbre
	// Pan is a per-note continuous pan controller.
	Pan
	// Gain is a per-note continuous gain controller.
	Gain
)

func (k NoteKind) String() string {
	switch k {
	case KeyOn:
		return "key-on"
	case KeyOff:
		return "key-off"
	case Pressure:
		return "pressure"
	case Timbre:
		return "timbre"
	case Pan:
		return "pan"
	case Gain:
		return "gain"
	}
	return "unknown"
}

// NoteEvent is a discrete note message flowing through note sockets.
type NoteEvent struct {
	Key   NoteKey
	Kind  NoteKind
	Value float64
}
