// Package app hosts the playback engine in a Bubble Tea player view.
package app

import (
	"time"

	"github.com/llehouerou/marquee/internal/artwork"
)

// TickMsg refreshes the player bar.
type TickMsg time.Time

// EventsMsg is sent when the engine has queued events to drain.
type EventsMsg struct{}

// LoadedMsg reports the outcome of the initial Load.
type LoadedMsg struct {
	Err error
}

// ArtworkMsg carries a poster thumbnail finished by the artwork loader.
type ArtworkMsg artwork.Image
