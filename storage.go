package patch

import "github.com/modular-dsp/patch/event"

func newParamBuffer(capacity int) *ParamBuffer {
	return event.NewBuffer[float64](capacity)
}

func newNoteBuffer(capacity int) *NoteBuffer {
	return event.NewBuffer[NoteEvent](capacity)
}

// storage owns the per-socket buffers shared by all scheduled operations.
// Buffer assignment happens at compile time; allocation happens in Prepare
// so the hot path never grows anything.
type storage struct {
	audio  [][]float64
	params []*ParamBuffer
	notes  []*NoteBuffer
}

func (s *storage) allocate(nAudio, nParam, nNote, bufferSize int) {
	s.audio = make([][]float64, nAudio)
	for i := range s.audio {
		s.audio[i] = make([]float64, bufferSize)
	}
	s.params = make([]*ParamBuffer, nParam)
	for i := range s.params {
		s.params[i] = newParamBuffer(bufferSize)
	}
	s.notes = make([]*NoteBuffer, nNote)
	for i := range s.notes {
		s.notes[i] = newNoteBuffer(bufferSize)
	}
}

func (s *storage) zeroAudio(index int) {
	buf := s.audio[index]
	for i := range buf {
		buf[i] = 0
	}
}
