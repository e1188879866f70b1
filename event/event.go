// Package event provides bounded, time-ordered event sequences used to carry
// sparse block-rate data such as parameter automation and notes. Buffers are
// allocated once and reused every block: the hot path never grows storage.
package event

import (
	"errors"
	"sort"
)

// ErrOverflow is returned when a push exceeds a buffer's fixed capacity.
var ErrOverflow = errors.New("event buffer overflow")

// Timestamped wraps a value with its sample position relative to the start
// of the current processing block.
type Timestamped[T any] struct {
	Sample int
	Value  T
}

// Buffer stores timestamped events in a sorted, capacity-bounded sequence.
// Events pushed with equal timestamps keep their push order. The capacity is
// fixed at construction and never grows.
type Buffer[T any] struct {
	data []Timestamped[T]
}

// NewBuffer returns an empty buffer with the given maximum capacity.
func NewBuffer[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{data: make([]Timestamped[T], 0, capacity)}
}

// Len returns the number of stored events.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer[T]) Cap() int {
	return cap(b.data)
}

// Push inserts an event at the given sample position, keeping time order.
// The sample must be non-negative. It returns ErrOverflow if the buffer is
// at capacity; previously stored events are left untouched.
func (b *Buffer[T]) Push(sample int, value T) error {
	if len(b.data) == cap(b.data) {
		return ErrOverflow
	}
	pos := sort.Search(len(b.data), func(i int) bool { return b.data[i].Sample > sample })
	b.data = b.data[:len(b.data)+1]
	copy(b.data[pos+1:], b.data[pos:])
	b.data[pos] = Timestamped[T]{Sample: sample, Value: value}
	return nil
}

// Events returns the stored events in non-decreasing sample order. The
// returned slice aliases internal storage and is valid until the next
// mutation of the buffer.
func (b *Buffer[T]) Events() []Timestamped[T] {
	return b.data
}

// At returns the first event stored exactly at the given sample, if any.
func (b *Buffer[T]) At(sample int) (T, bool) {
	pos := sort.Search(len(b.data), func(i int) bool { return b.data[i].Sample >= sample })
	if pos < len(b.data) && b.data[pos].Sample == sample {
		return b.data[pos].Value, true
	}
	var zero T
	return zero, false
}

// Has reports whether an event is stored at the given sample.
func (b *Buffer[T]) Has(sample int) bool {
	_, ok := b.At(sample)
	return ok
}

// Next returns the first event at or after the given sample, if any.
func (b *Buffer[T]) Next(sample int) (Timestamped[T], bool) {
	pos := sort.Search(len(b.data), func(i int) bool { return b.data[i].Sample >= sample })
	if pos < len(b.data) {
		return b.data[pos], true
	}
	return Timestamped[T]{}, false
}

// Clear resets the buffer to empty without releasing backing storage.
func (b *Buffer[T]) Clear() {
	b.data = b.data[:0]
}

// Merge clears the output buffer and fills it with the union of all input
// events in non-decreasing sample order. Simultaneous events from different
// inputs are ordered by input index, lower index first. It returns
// ErrOverflow if the combined count exceeds the output capacity; the output
// contents are unspecified on failure.
func Merge[T any](out *Buffer[T], inputs ...*Buffer[T]) error {
	out.Clear()
	for _, in := range inputs {
		for _, e := range in.Events() {
			if err := out.Push(e.Sample, e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
