// Package ring implements a bounded single-producer single-consumer queue
// used to move data out of the real-time thread without locks. Push and pop
// never block and never allocate; the overriding push evicts the oldest item
// instead of failing, which is the only backpressure the real-time side is
// allowed to apply.
package ring

import (
	"errors"
	"sync/atomic"
)

// ErrFull is returned when a non-overriding push finds the buffer full.
var ErrFull = errors.New("ring buffer full")

// buffer is the shared state behind a producer/consumer pair. Read and write
// indices are free-running and reduced modulo the capacity on access; they
// are padded apart to avoid false sharing between the two sides.
type buffer[T any] struct {
	read  atomic.Uint64
	_     [56]byte
	write atomic.Uint64
	_     [56]byte
	data  []T
}

// New allocates a buffer with the given capacity and splits it into exactly
// one producer and one consumer handle. Each handle must be used from at
// most one goroutine at a time; the two handles may be used concurrently
// with each other.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity < 1 {
		capacity = 1
	}
	b := &buffer[T]{data: make([]T, capacity)}
	return &Producer[T]{rb: b}, &Consumer[T]{rb: b}
}

func (b *buffer[T]) capacity() uint64 {
	return uint64(len(b.data))
}

// popOne removes the oldest item. It is shared by the consumer's pop and the
// producer's eviction: the compare-and-swap keeps the two sides from
// claiming the same slot.
func (b *buffer[T]) popOne() (T, bool) {
	for {
		read := b.read.Load()
		if read == b.write.Load() {
			var zero T
			return zero, false
		}
		item := b.data[read%b.capacity()]
		if b.read.CompareAndSwap(read, read+1) {
			return item, true
		}
	}
}

// Producer is the writing side of a buffer. It is not safe for concurrent
// use by multiple goroutines.
type Producer[T any] struct {
	rb *buffer[T]
	// write mirrors rb.write: only the producer advances it.
	write uint64
	// cachedRead caches the consumer's published read index to avoid
	// cache coherency traffic on every push.
	cachedRead uint64
}

// Push appends an item. It returns ErrFull if the buffer is at capacity; the
// rejected item is not stored.
func (p *Producer[T]) Push(item T) error {
	rb := p.rb
	if p.write-p.cachedRead >= rb.capacity() {
		p.cachedRead = rb.read.Load()
		if p.write-p.cachedRead >= rb.capacity() {
			return ErrFull
		}
	}
	rb.data[p.write%rb.capacity()] = item
	p.write++
	rb.write.Store(p.write)
	return nil
}

// PushSlice appends as many items as fit and returns how many were stored,
// always the leading items of the slice.
func (p *Producer[T]) PushSlice(items []T) int {
	rb := p.rb
	p.cachedRead = rb.read.Load()
	free := int(rb.capacity() - (p.write - p.cachedRead))
	if free > len(items) {
		free = len(items)
	}
	for _, item := range items[:free] {
		rb.data[p.write%rb.capacity()] = item
		p.write++
	}
	rb.write.Store(p.write)
	return free
}

// PushOverriding appends an item, evicting exactly one oldest item to make
// room when the buffer is full. The evicted item is returned with ok set.
func (p *Producer[T]) PushOverriding(item T) (evicted T, ok bool) {
	if err := p.Push(item); err == nil {
		var zero T
		return zero, false
	}
	evicted, _ = p.rb.popOne()
	// A concurrent pop may also have freed a slot, but at least one is
	// free now and only this producer can fill it.
	if err := p.Push(item); err != nil {
		panic("ring: push after eviction failed")
	}
	return evicted, true
}

// PushSliceOverriding appends all items, evicting as many oldest items as
// necessary first. If the slice is longer than the whole buffer, only its
// leading capacity items are stored.
func (p *Producer[T]) PushSliceOverriding(items []T) {
	rb := p.rb
	p.cachedRead = rb.read.Load()
	free := int(rb.capacity() - (p.write - p.cachedRead))
	for drop := len(items) - free; drop > 0; drop-- {
		if _, ok := rb.popOne(); !ok {
			break
		}
	}
	p.PushSlice(items)
}

// Free returns the number of empty slots as last observed by the producer.
func (p *Producer[T]) Free() int {
	p.cachedRead = p.rb.read.Load()
	return int(p.rb.capacity() - (p.write - p.cachedRead))
}

// Consumer is the reading side of a buffer. It is not safe for concurrent
// use by multiple goroutines.
type Consumer[T any] struct {
	rb *buffer[T]
}

// Pop removes and returns the oldest item, if any.
func (c *Consumer[T]) Pop() (T, bool) {
	return c.rb.popOne()
}

// PopSlice fills the slice with the oldest items in FIFO order and returns
// how many were popped.
func (c *Consumer[T]) PopSlice(items []T) int {
	for i := range items {
		item, ok := c.rb.popOne()
		if !ok {
			return i
		}
		items[i] = item
	}
	return len(items)
}

// Drain pops items in FIFO order, calling fn for each until the buffer is
// empty or fn returns false.
func (c *Consumer[T]) Drain(fn func(T) bool) {
	for {
		item, ok := c.rb.popOne()
		if !ok {
			return
		}
		if !fn(item) {
			return
		}
	}
}

// Len returns the number of buffered items at the time of the call.
func (c *Consumer[T]) Len() int {
	return int(c.rb.write.Load() - c.rb.read.Load())
}
