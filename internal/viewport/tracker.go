package viewport

import "sync"

// Loader toggles expensive per-item work, such as loading artwork.
type Loader[K comparable] interface {
	Show(key K)
	Hide(key K)
}

// Tracker drives a Loader from viewport membership: items entering the
// window are shown, items leaving it (or leaving the collection) are hidden.
// Eviction is by membership, never by recency.
type Tracker[K comparable] struct {
	loader      Loader[K]
	cacheExtent float64

	mu    sync.Mutex
	shown map[K]struct{}
}

// NewTracker creates a Tracker. cacheExtent widens the window on both sides
// so items about to scroll in are shown ahead of time.
func NewTracker[K comparable](loader Loader[K], cacheExtent float64) *Tracker[K] {
	return &Tracker[K]{
		loader:      loader,
		cacheExtent: cacheExtent,
		shown:       make(map[K]struct{}),
	}
}

// Update recomputes visibility for the collection identified by keys, whose
// geometry is bounds (index-aligned with keys), against w. It returns the
// visible indices.
//
// When nothing is visible the pass is skipped entirely: the container is
// typically not laid out yet, and hiding everything would thrash the loader.
func (t *Tracker[K]) Update(keys []K, bounds []Bounds, w Window) []int {
	n := min(len(keys), len(bounds))
	visible := Visible(bounds[:n], w.Expand(t.cacheExtent))
	if len(visible) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	want := make(map[K]struct{}, len(visible))
	for _, i := range visible {
		want[keys[i]] = struct{}{}
	}

	for key := range t.shown {
		if _, ok := want[key]; !ok {
			t.loader.Hide(key)
			delete(t.shown, key)
		}
	}
	for _, i := range visible {
		key := keys[i]
		if _, ok := t.shown[key]; !ok {
			t.loader.Show(key)
			t.shown[key] = struct{}{}
		}
	}

	return visible
}

// Shown reports whether key is currently shown.
func (t *Tracker[K]) Shown(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.shown[key]
	return ok
}

// Reset hides every shown item.
func (t *Tracker[K]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.shown {
		t.loader.Hide(key)
	}
	clear(t.shown)
}

// Paginator requests the next page when the scroll position reaches the
// end of the content, at most once per content extent.
type Paginator struct {
	next func()

	mu      sync.Mutex
	firedAt float64
	fired   bool
}

// NewPaginator creates a Paginator that calls next on each new bottom edge.
func NewPaginator(next func()) *Paginator {
	return &Paginator{next: next}
}

// Update classifies the scroll position and fires next when it sits at the
// end edge of content whose extent has not already triggered a request.
func (p *Paginator) Update(offset, pageSize, extent float64) bool {
	if Classify(offset, pageSize, extent) != EdgeEnd {
		return false
	}

	p.mu.Lock()
	if p.fired && p.firedAt == extent {
		p.mu.Unlock()
		return false
	}
	p.fired = true
	p.firedAt = extent
	p.mu.Unlock()

	p.next()
	return true
}

// Reset forgets the last fired extent, e.g. when the collection is replaced.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fired = false
	p.firedAt = 0
}
