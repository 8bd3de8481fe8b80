// internal/playback/state.go
package playback

// State is the playback session state.
//
//	             Load
//	  ┌───────────────────────────┐
//	  ▼                           │
//	Idle ──Load──► Loading ──ready──► Playing ◄──► Paused
//	  ▲                                  │            │
//	  │                                  ▼            ▼
//	  └─────────Unload─────────── Ended / Errored ◄───┘
//
// Buffering is orthogonal and reported on Snapshot.Buffering. Load is valid
// from every state; Unload from every state and is a no-op from Idle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsActive returns true if media is ready (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// CanSeek returns true if a seek reaches the backend: media is ready, or it
// ended and the backend still holds it.
func (s State) CanSeek() bool {
	return s.IsActive() || s == StateEnded
}

// HasSession returns true if a backend is held for the state.
func (s State) HasSession() bool {
	return s != StateIdle
}
