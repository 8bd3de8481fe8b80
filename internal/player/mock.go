// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for Backend.
//
// Unlike real backends it is safe for concurrent use so tests can inspect it
// while the engine drives it.
type Mock struct {
	mu sync.Mutex

	telemetry Telemetry
	uri       string
	paused    bool
	position  time.Duration
	duration  time.Duration
	hasPos    bool
	hasDur    bool
	volume    float64
	scale     float64
	streams   map[Kind][]Stream
	current   map[Kind]int
	closed    bool

	openErr   error
	selectErr error

	openCalls   []string
	seekCalls   []time.Duration
	selectCalls []SelectCall
	closeCalls  int

	signals chan Signal
	onClose func()
}

// SelectCall records one SelectStream invocation.
type SelectCall struct {
	Kind Kind
	ID   int
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		telemetry: TelemetryPoll,
		paused:    true,
		volume:    1,
		scale:     1,
		streams:   make(map[Kind][]Stream),
		current:   map[Kind]int{KindText: NoTrack, KindAudio: NoTrack},
		signals:   make(chan Signal, 64),
	}
}

func (m *Mock) Open(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCalls = append(m.openCalls, uri)
	if m.openErr != nil {
		return m.openErr
	}
	m.uri = uri
	m.paused = false
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, position)
	m.position = position
	m.hasPos = true
	return nil
}

func (m *Mock) SetVolume(level float64) error {
	m.mu.Lock()
	m.volume = level
	m.mu.Unlock()
	return nil
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) SelectStream(kind Kind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectCalls = append(m.selectCalls, SelectCall{Kind: kind, ID: id})
	if m.selectErr != nil {
		return m.selectErr
	}
	m.current[kind] = id
	return nil
}

func (m *Mock) SetSubtitleScale(factor float64) error {
	m.mu.Lock()
	m.scale = factor
	m.mu.Unlock()
	return nil
}

func (m *Mock) Position() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, m.hasPos
}

func (m *Mock) Duration() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.hasDur
}

func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) Streams(kind Kind) ([]Stream, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Stream, len(m.streams[kind]))
	copy(out, m.streams[kind])
	return out, m.current[kind]
}

func (m *Mock) Telemetry() Telemetry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.telemetry
}

func (m *Mock) Signals() <-chan Signal { return m.signals }

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closeCalls++
	already := m.closed
	m.closed = true
	onClose := m.onClose
	m.mu.Unlock()
	if !already && onClose != nil {
		onClose()
	}
	return nil
}

// Test helpers

// Emit delivers a signal as if the native pipeline raised it.
func (m *Mock) Emit(sig Signal) { m.signals <- sig }

func (m *Mock) SetTelemetry(t Telemetry) {
	m.mu.Lock()
	m.telemetry = t
	m.mu.Unlock()
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	m.position = d
	m.hasPos = true
	m.mu.Unlock()
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.hasDur = true
	m.mu.Unlock()
}

func (m *Mock) SetPaused(paused bool) {
	m.mu.Lock()
	m.paused = paused
	m.mu.Unlock()
}

func (m *Mock) SetStreams(kind Kind, streams []Stream, current int) {
	m.mu.Lock()
	m.streams[kind] = streams
	m.current[kind] = current
	m.mu.Unlock()
}

func (m *Mock) SetOpenError(err error) {
	m.mu.Lock()
	m.openErr = err
	m.mu.Unlock()
}

func (m *Mock) SetSelectError(err error) {
	m.mu.Lock()
	m.selectErr = err
	m.mu.Unlock()
}

func (m *Mock) URI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uri
}

func (m *Mock) Scale() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

func (m *Mock) OpenCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) SelectCalls() []SelectCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SelectCall(nil), m.selectCalls...)
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

// MockFactory hands out Mock backends and tracks how many are alive.
type MockFactory struct {
	mu        sync.Mutex
	created   []*Mock
	live      int
	maxLive   int
	createErr error
	prepare   func(*Mock)
}

// NewMockFactory creates a factory. prepare, if non-nil, configures each
// mock before it is returned.
func NewMockFactory(prepare func(*Mock)) *MockFactory {
	return &MockFactory{prepare: prepare}
}

func (f *MockFactory) Create() (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	m := NewMock()
	m.onClose = func() {
		f.mu.Lock()
		f.live--
		f.mu.Unlock()
	}
	if f.prepare != nil {
		f.prepare(m)
	}
	f.created = append(f.created, m)
	f.live++
	if f.live > f.maxLive {
		f.maxLive = f.live
	}
	return m, nil
}

func (f *MockFactory) SetCreateError(err error) {
	f.mu.Lock()
	f.createErr = err
	f.mu.Unlock()
}

// Created returns every mock created so far, oldest first.
func (f *MockFactory) Created() []*Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Mock(nil), f.created...)
}

// Last returns the most recently created mock, or nil.
func (f *MockFactory) Last() *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

func (f *MockFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// MaxLive is the highest number of simultaneously open backends observed.
func (f *MockFactory) MaxLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

var _ Factory = (*MockFactory)(nil)
