package player

// Kind identifies a selectable stream type.
type Kind int

const (
	KindText Kind = iota
	KindAudio
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Telemetry is the way a backend reports playback progress.
//
//   - TelemetryPoll: the engine queries Position on a timer while playing
//     (GStreamer playbin).
//   - TelemetryPush: the backend emits SignalPosition, SignalDuration and
//     SignalPause itself (mpv property observers).
type Telemetry int

const (
	TelemetryPoll Telemetry = iota
	TelemetryPush
)

// String returns the telemetry mode name.
func (t Telemetry) String() string {
	switch t {
	case TelemetryPoll:
		return "poll"
	case TelemetryPush:
		return "push"
	default:
		return "unknown"
	}
}
