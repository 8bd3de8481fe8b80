//go:build !linux

package notify

// ArtworkIcon returns empty on non-Linux platforms.
// Desktop notifications are only supported on Linux via D-Bus.
func ArtworkIcon(_ string) string {
	return ""
}
