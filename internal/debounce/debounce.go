// Package debounce coalesces bursty inputs into a single delayed publish per
// logical slot.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the publish delay used when New is given a zero delay.
const DefaultDelay = 250 * time.Millisecond

// Timer is a cancellable scheduled task.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed work.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures an Updater.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall-clock scheduler.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

type pending[P any] struct {
	payload P
	timer   Timer
	gen     uint64
}

// Updater delays publishing of per-slot payloads until the slot has been
// quiet for the configured delay.
//
// Submit cancels any pending publish for the slot and reschedules it with
// the new payload. A timer that already fired but lost the race with a
// superseding Submit is ignored, so a superseded payload is never published.
//
// Publishes are serialized: every payload is stamped when it is claimed,
// and one older than the last published payload of its slot is dropped.
// The publish callback must not call back into the Updater's publishing
// methods (PublishNow, Flush).
type Updater[K comparable, P any] struct {
	delay   time.Duration
	publish func(K, P)
	clock   Clock

	mu      sync.Mutex
	slots   map[K]*pending[P]
	gen     uint64
	stopped bool

	pubMu     sync.Mutex
	published map[K]uint64 // stamp of the last published payload per slot
}

// New creates an Updater that calls publish after delay of quiet per slot.
func New[K comparable, P any](delay time.Duration, publish func(K, P), opts ...Option) *Updater[K, P] {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Updater[K, P]{
		delay:     delay,
		publish:   publish,
		clock:     o.clock,
		slots:     make(map[K]*pending[P]),
		published: make(map[K]uint64),
	}
}

// Delay returns the configured publish delay.
func (u *Updater[K, P]) Delay() time.Duration {
	return u.delay
}

// Submit stores payload as the pending value for slot and (re)schedules its
// publish.
func (u *Updater[K, P]) Submit(slot K, payload P) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.stopped {
		return
	}

	if p, ok := u.slots[slot]; ok {
		p.timer.Stop()
	}

	u.gen++
	gen := u.gen
	p := &pending[P]{payload: payload, gen: gen}
	p.timer = u.clock.AfterFunc(u.delay, func() { u.fire(slot, gen) })
	u.slots[slot] = p
}

// PublishNow cancels any pending publish for slot and publishes payload
// immediately on the calling goroutine.
func (u *Updater[K, P]) PublishNow(slot K, payload P) {
	u.mu.Lock()
	if u.stopped {
		u.mu.Unlock()
		return
	}
	if p, ok := u.slots[slot]; ok {
		p.timer.Stop()
		delete(u.slots, slot)
	}
	u.gen++
	gen := u.gen
	u.mu.Unlock()

	u.emit(slot, gen, payload)
}

// Cancel drops the pending publish for slot, if any.
func (u *Updater[K, P]) Cancel(slot K) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if p, ok := u.slots[slot]; ok {
		p.timer.Stop()
		delete(u.slots, slot)
	}
}

// Pending returns the payload waiting to be published for slot.
func (u *Updater[K, P]) Pending(slot K) (P, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.slots[slot]
	if !ok {
		var zero P
		return zero, false
	}
	return p.payload, true
}

// Flush publishes every pending payload immediately.
func (u *Updater[K, P]) Flush() {
	u.mu.Lock()
	flushed := u.drainLocked()
	u.mu.Unlock()

	for slot, p := range flushed {
		u.emit(slot, p.gen, p.payload)
	}
}

// Stop cancels all pending publishes. Later submissions are ignored.
func (u *Updater[K, P]) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.drainLocked()
	u.stopped = true
}

func (u *Updater[K, P]) drainLocked() map[K]*pending[P] {
	out := make(map[K]*pending[P], len(u.slots))
	for slot, p := range u.slots {
		p.timer.Stop()
		out[slot] = p
	}
	clear(u.slots)
	return out
}

func (u *Updater[K, P]) fire(slot K, gen uint64) {
	u.mu.Lock()
	p, ok := u.slots[slot]
	if !ok || p.gen != gen {
		// Superseded or cancelled after the timer had already fired.
		u.mu.Unlock()
		return
	}
	delete(u.slots, slot)
	payload := p.payload
	u.mu.Unlock()

	u.emit(slot, gen, payload)
}

// emit publishes payload unless a newer payload of slot was published
// while this one waited for its turn.
func (u *Updater[K, P]) emit(slot K, gen uint64, payload P) {
	u.pubMu.Lock()
	defer u.pubMu.Unlock()
	if gen <= u.published[slot] {
		return
	}
	u.published[slot] = gen
	u.publish(slot, payload)
}
