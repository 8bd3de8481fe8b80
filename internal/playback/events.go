package playback

import "time"

// Event is a normalized playback notification, drained by the UI once per
// tick with Engine.Drain.
type Event interface {
	isEvent()
}

// PositionChanged reports progress. Queued position events collapse so the
// UI only sees the latest one per drain.
type PositionChanged struct {
	Position time.Duration
	Duration time.Duration
}

// PauseChanged is emitted when the paused flag flips.
type PauseChanged struct {
	Paused bool
}

// TracksChanged carries the freshly derived track lists. Emitted only when
// a derivation differs from the previous one.
type TracksChanged struct {
	Text  []Track
	Audio []Track
}

// BufferingChanged is emitted when the buffering flag flips.
type BufferingChanged struct {
	Buffering bool
}

// Ended is emitted at end of stream.
type Ended struct{}

// Error is emitted when the backend reports a playback failure. Err is a
// *PlaybackError.
type Error struct {
	Err error
}

func (PositionChanged) isEvent()  {}
func (PauseChanged) isEvent()     {}
func (TracksChanged) isEvent()    {}
func (BufferingChanged) isEvent() {}
func (Ended) isEvent()            {}
func (Error) isEvent()            {}
