package playback

import "sync"

// eventQueue buffers normalized events until the UI drains them.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

// push appends ev. A PositionChanged replaces a PositionChanged at the tail
// so order relative to other events is kept.
func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	n := len(q.events)
	if _, ok := ev.(PositionChanged); ok && n > 0 {
		if _, last := q.events[n-1].(PositionChanged); last {
			q.events[n-1] = ev
			q.mu.Unlock()
			return
		}
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
		// Already signaled
	}
}

// drain returns and clears the queued events.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
