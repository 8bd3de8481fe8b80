package state

import (
	"sync"
	"time"
)

// Mock is a test double for Manager.
type Mock struct {
	mu        sync.Mutex
	positions map[string]Progress
	prefs     Preferences
	seeks     int
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{positions: make(map[string]Progress), prefs: DefaultPreferences}
}

func (m *Mock) Resume(uri string) (time.Duration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[uri]
	if !ok || p.Finished() {
		return 0, false, nil
	}
	return p.Position, true, nil
}

func (m *Mock) SaveProgress(uri string, p Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[uri] = p
}

func (m *Mock) SaveSeek(uri string, p Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[uri] = p
	m.seeks++
}

func (m *Mock) Forget(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, uri)
	return nil
}

func (m *Mock) GetPreferences() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *Mock) SavePreferences(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Progress returns the last recorded progress for uri.
func (m *Mock) Progress(uri string) (Progress, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[uri]
	return p, ok
}

// Seeks returns how many seeks were recorded.
func (m *Mock) Seeks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seeks
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Interface = (*Mock)(nil)
