// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"github.com/llehouerou/marquee/internal/errmsg"
)

// Identity reported to the notification server.
const (
	AppName      = "Marquee"
	DesktopEntry = "marquee"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// CategoryPlaybackError tags failure notifications so servers can group them.
const CategoryPlaybackError = "x-marquee.playback.error"

// errorTimeout keeps playback failures on screen long enough to be read
// after the player window closes.
const errorTimeout = 8000

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
	Category   string  // freedesktop category hint (optional)
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// PlaybackFailed builds the generic notification shown when playback of
// title fails. The underlying error stays in the log.
func PlaybackFailed(title, icon string) Notification {
	return Notification{
		Title:    errmsg.Generic(errmsg.OpPlayback),
		Body:     title,
		Icon:     icon,
		Timeout:  errorTimeout,
		Urgency:  UrgencyCritical,
		Category: CategoryPlaybackError,
	}
}

// Disabled returns a notifier that drops everything.
func Disabled() Notifier {
	return &stubNotifier{}
}
