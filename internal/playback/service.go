package playback

import (
	"context"
	"time"

	"github.com/llehouerou/marquee/internal/statebus"
)

// Service defines the playback engine contract consumed by the UI and the
// MPRIS adapter.
type Service interface {
	// Session control
	Load(ctx context.Context, uri string, start time.Duration) error
	Unload()

	// Playback control
	Play()
	Pause()
	Toggle()
	Seek(position time.Duration)
	SeekBy(delta time.Duration)
	SetVolume(percent int)

	// Tracks
	SelectTextTrack(id int)
	SelectAudioTrack(id int)
	SetSubtitleScale(factor float64)

	// Telemetry
	Snapshot() Snapshot
	Bus() *statebus.Bus[Snapshot]
	Drain() []Event
	Pending() <-chan struct{}

	// Lifecycle
	Close() error
}

// Verify Engine implements Service at compile time.
var _ Service = (*Engine)(nil)
