//go:build linux

package notify

import (
	"net/url"
	"slices"

	"github.com/godbus/dbus/v5"
)

const (
	notifyName = "org.freedesktop.Notifications"
	notifyPath = dbus.ObjectPath("/org/freedesktop/Notifications")
)

// dbusNotifier talks to the session's notification server.
type dbusNotifier struct {
	obj dbus.BusObject
	// body is false when the server only renders summaries; the body is
	// then appended to the summary.
	body bool
}

// New connects to the desktop notification server. Without a session bus
// it returns a notifier that drops everything, since a missing desktop is
// not an error for a media player.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return &stubNotifier{}, nil //nolint:nilerr // headless session
	}

	n := &dbusNotifier{obj: conn.Object(notifyName, notifyPath), body: true}
	var caps []string
	if err := n.obj.Call(notifyName+".GetCapabilities", 0).Store(&caps); err == nil {
		n.body = slices.Contains(caps, "body")
	}
	return n, nil
}

// Notify sends notif and returns the server's id for it.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	summary, body := notif.Title, notif.Body
	if !n.body && body != "" {
		summary += ": " + body
		body = ""
	}
	icon, hints := iconAndHints(notif)

	var id uint32
	err := n.obj.Call(notifyName+".Notify", 0,
		AppName,
		notif.ReplacesID,
		icon,
		summary,
		body,
		[]string{},
		hints,
		notif.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Close withdraws the notification with the given id.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(notifyName+".CloseNotification", 0, id).Err
}

// iconAndHints splits notif.Icon into an icon name or an image-path hint.
// Local posters are file:// URLs, which servers only accept as a hint.
func iconAndHints(notif Notification) (string, map[string]dbus.Variant) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(DesktopEntry),
	}
	if notif.Category != "" {
		hints["category"] = dbus.MakeVariant(notif.Category)
	}

	icon := notif.Icon
	if u, err := url.Parse(icon); err == nil && u.Scheme == "file" {
		hints["image-path"] = dbus.MakeVariant(icon)
		icon = DesktopEntry
	}
	return icon, hints
}
