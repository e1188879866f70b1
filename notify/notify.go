// Package notify implements a lock-free listener registry. Listeners may be
// registered from any goroutine while a notification is in flight;
// notification iterates a stable snapshot and never blocks on registration.
package notify

import "sync/atomic"

// Listener receives notified values.
type Listener[T any] func(T)

// Notifier fans a value out to all registered listeners. The zero value is
// ready to use. Registration appends to a copy-on-write snapshot with a
// compare-and-swap, so Notify always iterates an immutable listener list.
type Notifier[T any] struct {
	listeners atomic.Pointer[[]Listener[T]]
}

// New returns an empty notifier.
func New[T any]() *Notifier[T] {
	return &Notifier[T]{}
}

// AddListener registers fn. Listeners cannot be removed; they live as long
// as the notifier. Safe to call concurrently with Notify and with other
// AddListener calls.
func (n *Notifier[T]) AddListener(fn Listener[T]) {
	for {
		old := n.listeners.Load()
		var next []Listener[T]
		if old != nil {
			next = make([]Listener[T], len(*old), len(*old)+1)
			copy(next, *old)
		}
		next = append(next, fn)
		if n.listeners.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Notify calls every listener registered at the time of the call, in
// registration order. Listeners registered while Notify runs are not
// invoked for this value.
func (n *Notifier[T]) Notify(value T) {
	snapshot := n.listeners.Load()
	if snapshot == nil {
		return
	}
	for _, fn := range *snapshot {
		fn(value)
	}
}

// Len returns the number of registered listeners.
func (n *Notifier[T]) Len() int {
	snapshot := n.listeners.Load()
	if snapshot == nil {
		return 0
	}
	return len(*snapshot)
}
