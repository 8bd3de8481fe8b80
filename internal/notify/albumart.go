//go:build linux

package notify

import "github.com/llehouerou/marquee/internal/mpris"

// ArtworkIcon returns a local poster next to the media at uri, usable as
// a notification icon.
// This is a convenience wrapper around mpris.FindArtwork.
func ArtworkIcon(uri string) string {
	return mpris.FindArtwork(uri)
}
