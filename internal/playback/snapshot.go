package playback

import (
	"time"

	"github.com/llehouerou/marquee/internal/player"
)

// Snapshot is the published telemetry of the current session. Each write
// to the engine's bus replaces it wholesale; track slices are never mutated
// after publication.
type Snapshot struct {
	SessionID     string
	URI           string
	State         State
	Position      time.Duration
	Duration      time.Duration
	Paused        bool
	Volume        int // 0-100
	Buffering     bool
	TextTracks    []Track
	AudioTracks   []Track
	SubtitleScale float64
}

// Tracks returns the track list of kind.
func (s Snapshot) Tracks(kind player.Kind) []Track {
	if kind == player.KindAudio {
		return s.AudioTracks
	}
	return s.TextTracks
}

// ActiveTrack returns the active track of kind, if any.
func (s Snapshot) ActiveTrack(kind player.Kind) (Track, bool) {
	for _, t := range s.Tracks(kind) {
		if t.Active {
			return t, true
		}
	}
	return Track{}, false
}

// Progress returns position/duration in [0, 1], or 0 when duration is unknown.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	return min(max(p, 0), 1)
}
