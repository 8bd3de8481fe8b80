// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlayback      Op = "play media"
	OpPlaybackSeek  Op = "seek"
	OpTrackSelect   Op = "select track"

	// Resume store
	OpResumeLoad Op = "load resume position"
	OpResumeSave Op = "save resume position"

	// Artwork
	OpArtworkLoad Op = "load artwork"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Generic creates a message without error details, for failures whose
// cause means nothing to the user (codec or network internals).
func Generic(op Op) string {
	return fmt.Sprintf("Failed to %s", op)
}
