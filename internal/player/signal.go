package player

import (
	"fmt"
	"time"
)

// SignalKind identifies a raw backend notification.
type SignalKind int

const (
	// SignalStateChanged: the pipeline changed state or finished loading
	// media. Paused state, duration and streams should be re-read.
	SignalStateChanged SignalKind = iota
	// SignalBuffering carries Percent (100 = done).
	SignalBuffering
	// SignalPropertyChanged carries Property (e.g. "volume").
	SignalPropertyChanged
	// SignalTracksChanged: stream list or current selection changed.
	SignalTracksChanged
	// SignalPosition carries Position (push telemetry only).
	SignalPosition
	// SignalDuration carries Duration (push telemetry only).
	SignalDuration
	// SignalPause carries Paused (push telemetry only).
	SignalPause
	SignalEndOfStream
	// SignalError carries Err.
	SignalError
)

// String returns the signal name.
func (k SignalKind) String() string {
	switch k {
	case SignalStateChanged:
		return "state-changed"
	case SignalBuffering:
		return "buffering"
	case SignalPropertyChanged:
		return "property-changed"
	case SignalTracksChanged:
		return "tracks-changed"
	case SignalPosition:
		return "position"
	case SignalDuration:
		return "duration"
	case SignalPause:
		return "pause"
	case SignalEndOfStream:
		return "eos"
	case SignalError:
		return "error"
	default:
		return "unknown"
	}
}

// Signal is a raw notification from a backend.
type Signal struct {
	Kind     SignalKind
	Percent  int
	Property string
	Position time.Duration
	Duration time.Duration
	Paused   bool
	Err      error
}

// StreamError is a decode/demux/network failure reported by a backend.
type StreamError struct {
	Message string
	Debug   string
}

func (e *StreamError) Error() string {
	if e.Debug == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Debug)
}
