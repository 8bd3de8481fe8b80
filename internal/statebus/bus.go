// Package statebus provides a latest-value-wins snapshot holder with
// synchronous publish/subscribe.
//
// A Bus holds exactly one snapshot of a state record. Every Write replaces
// the snapshot wholesale and then invokes every registered listener, in
// registration order, on the writing goroutine. The bus never queues: a
// listener only ever sees the snapshot current at the time it is invoked,
// and a listener registered late receives no replay of earlier writes.
//
// Listeners that need delivery on a specific goroutine (a UI loop, for
// example) must marshal inside their callback; the bus performs no thread
// hopping of its own.
package statebus

import "sync"

type listener[T any] struct {
	id int
	fn func(*T)
}

// Bus is a thread-safe holder for snapshots of T.
//
// Writes are totally ordered: a write mutex is held across the replacement
// and the listener fan-out, so listeners observe writes in the order the
// Write calls completed. Listeners may call Read, but must not call Write on
// the same bus from inside a callback.
type Bus[T any] struct {
	writeMu sync.Mutex

	mu    sync.RWMutex
	value T

	listenersMu sync.RWMutex
	listeners   []listener[T]
	nextID      int
}

// New creates a bus holding initial.
func New[T any](initial T) *Bus[T] {
	return &Bus[T]{value: initial}
}

// Read returns a copy of the current snapshot.
//
// The copy is shallow: slices and maps inside T are shared with the bus and
// must be treated as read-only.
func (b *Bus[T]) Read() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Write replaces the snapshot with mutate(current) and notifies listeners.
func (b *Bus[T]) Write(mutate func(T) T) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	next := mutate(b.value)
	b.value = next
	b.mu.Unlock()

	b.listenersMu.RLock()
	ls := make([]listener[T], len(b.listeners))
	copy(ls, b.listeners)
	b.listenersMu.RUnlock()

	for _, l := range ls {
		l.fn(&next)
	}
}

// Listen registers fn to be called with every new snapshot.
// The returned cancel func removes the listener; it is safe to call twice.
func (b *Bus[T]) Listen(fn func(*T)) (cancel func()) {
	b.listenersMu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, listener[T]{id: id, fn: fn})
	b.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Len returns the number of registered listeners.
func (b *Bus[T]) Len() int {
	b.listenersMu.RLock()
	defer b.listenersMu.RUnlock()
	return len(b.listeners)
}

func (b *Bus[T]) remove(id int) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Subscribe registers a projection on b. On every write, project receives
// the new snapshot; when it returns ok, send is called with the message.
//
// Both run synchronously on the writing goroutine.
func Subscribe[T, Msg any](b *Bus[T], send func(Msg), project func(*T) (Msg, bool)) (cancel func()) {
	return b.Listen(func(v *T) {
		if msg, ok := project(v); ok {
			send(msg)
		}
	})
}
