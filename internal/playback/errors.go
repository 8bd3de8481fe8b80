package playback

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/llehouerou/marquee/internal/player"
)

// ErrClosed is returned by Load after Close.
var ErrClosed = errors.New("playback engine closed")

var errUnknownTrack = errors.New("no such track")

// BackendInitError reports that a backend could not be created or could
// not open the media. The session was not started.
type BackendInitError struct {
	URI string
	Err error
}

func (e *BackendInitError) Error() string {
	return fmt.Sprintf("initialize backend for %s: %v", e.URI, e.Err)
}

func (e *BackendInitError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *BackendInitError) Cause() error { return e.Err }

// ErrorCategory classifies backend failures.
type ErrorCategory int

const (
	// CategoryNetwork covers connection, timeout and DNS failures.
	CategoryNetwork ErrorCategory = iota
	// CategoryCodec covers decode, demux and format failures.
	CategoryCodec
	// CategoryAuth covers authentication and authorization failures.
	CategoryAuth
	CategoryUnknown
)

// String returns the category name.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryCodec:
		return "codec"
	case CategoryAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// PlaybackError is a failure reported by the backend during playback.
type PlaybackError struct {
	Category ErrorCategory
	Err      error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed [%s]: %v", e.Category, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

func (e *PlaybackError) Cause() error { return e.Err }

// TrackSelectionError reports a rejected track selection. It is logged,
// never surfaced.
type TrackSelectionError struct {
	Kind player.Kind
	ID   int
	Err  error
}

func (e *TrackSelectionError) Error() string {
	return fmt.Sprintf("select %s track %d: %v", e.Kind, e.ID, e.Err)
}

func (e *TrackSelectionError) Unwrap() error { return e.Err }

var (
	authKeywords = []string{
		"unauthorized", "401", "403", "forbidden",
		"authentication", "credentials", "password",
	}
	codecKeywords = []string{
		"codec", "decode", "decoder", "demux", "format",
		"caps", "negotiat", "not-negotiated", "no suitable plugins",
		"unrecognized file", "corrupt", "stream type",
	}
	networkKeywords = []string{
		"connection", "timeout", "timed out", "unreachable",
		"network", "dns", "resolve", "socket", "http",
		"not found", "could not connect", "failed to connect", "404",
	}
)

// ClassifyError categorizes a backend failure from its message and debug
// text. Auth is checked first as the most specific, network last.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	text := err.Error()
	var serr *player.StreamError
	if errors.As(err, &serr) {
		text = serr.Message + " " + serr.Debug
	}
	text = strings.ToLower(text)

	switch {
	case containsAny(text, authKeywords):
		return CategoryAuth
	case containsAny(text, codecKeywords):
		return CategoryCodec
	case containsAny(text, networkKeywords):
		return CategoryNetwork
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
