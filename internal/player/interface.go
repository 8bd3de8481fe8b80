// internal/player/interface.go
package player

import "time"

// NoTrack deselects every stream of a kind.
const NoTrack = -1

// Stream is the raw metadata a backend reports for one selectable stream.
type Stream struct {
	ID       int
	Language string // ISO 639 code as reported by the container, may be empty
	Title    string // stream title, may be empty
}

// Backend is the native decode/render pipeline contract.
//
// A Backend is not safe for concurrent use: the playback engine owns it and
// calls it from a single goroutine. Signals is the only part of the contract
// that is produced on another goroutine.
type Backend interface {
	// Open sets the media URI and starts playback.
	Open(uri string) error
	Play() error
	Pause() error
	Seek(position time.Duration) error
	// SetVolume sets the linear volume level, 0.0 to 1.0.
	SetVolume(level float64) error
	Volume() float64
	// SelectStream makes id the current stream of kind, or disables the
	// kind when id is NoTrack.
	SelectStream(kind Kind, id int) error
	SetSubtitleScale(factor float64) error

	// Position and Duration report false while unknown.
	Position() (time.Duration, bool)
	Duration() (time.Duration, bool)
	Paused() bool
	// Streams lists the streams of kind and the current one (NoTrack if none).
	Streams(kind Kind) (streams []Stream, current int)

	// Telemetry reports how position updates reach the engine.
	Telemetry() Telemetry
	// Signals delivers raw native notifications. The channel is never
	// closed; it simply goes quiet once Close has started.
	Signals() <-chan Signal
	// Close stops the native event watch and then releases the pipeline.
	// It is safe to call more than once.
	Close() error
}

// Factory constructs backends. Create failure is fatal for the session
// being started.
type Factory interface {
	Create() (Backend, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func() (Backend, error)

// Create calls f.
func (f FactoryFunc) Create() (Backend, error) { return f() }

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
